// Package simulator replays a scripted bout as PSS datagrams so the full
// ingestion path can be exercised without scoring hardware on the network.
package simulator

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/ringcast/ringcast/pkg/logger"
)

// Default simulation constants.
const (
	defaultRounds       = 3
	defaultRoundSeconds = 120
)

// Config controls the simulated bout.
type Config struct {
	Addr         string        // UDP target address
	Match        string        // match number sent in the config datagram
	Phase        string        // tournament phase label
	Rounds       int           // rounds in the bout
	RoundSeconds int           // seconds per round
	Delay        time.Duration // pause between datagrams
	Verbose      bool          // log every datagram sent
}

// Run dials the target and sends the scenario one datagram at a time.
func Run(ctx context.Context, cfg *Config) error {
	if cfg.Rounds < 1 {
		cfg.Rounds = defaultRounds
	}
	if cfg.RoundSeconds < 1 {
		cfg.RoundSeconds = defaultRoundSeconds
	}

	conn, err := net.Dial("udp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDial, err)
	}
	defer func() { _ = conn.Close() }()

	log := logger.Get()
	datagrams := Scenario(cfg)
	log.Info(ctx, "starting simulated bout",
		logger.String("addr", cfg.Addr),
		logger.String("match", cfg.Match),
		logger.Int("datagrams", len(datagrams)))

	for _, d := range datagrams {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if _, err := conn.Write([]byte(d)); err != nil {
			return fmt.Errorf("%w: %v", ErrSend, err)
		}
		if cfg.Verbose {
			log.Info(ctx, "sent datagram", logger.String("data", d))
		}
		if cfg.Delay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(cfg.Delay):
			}
		}
	}

	log.Info(ctx, "simulated bout complete", logger.String("match", cfg.Match))
	return nil
}

// Scenario builds the datagram script for one bout. The sequence mirrors
// what real scoring hardware emits: load, match config, athletes, ready,
// then per-round clock, hits, points and score echoes, ending with a winner.
func Scenario(cfg *Config) []string {
	clock := formatClock(cfg.RoundSeconds)
	out := []string{
		"load",
		fmt.Sprintf("mch;%s;%s;%d;%d;M:SS;", cfg.Match, cfg.Phase, cfg.Rounds, cfg.RoundSeconds),
		"at1;HONG Jihoon;KOR;",
		"at2;VALDEZ Marco;MEX;",
		"rdy",
	}

	score1, score2 := 0, 0
	for round := 1; round <= cfg.Rounds; round++ {
		out = append(out,
			fmt.Sprintf("rnd;%d", round),
			"clk;"+clock+";start",
		)

		// Exchange of hits and points, alternating slots per round.
		if round%2 == 1 {
			score1 += 2
			out = append(out,
				"hl1;48",
				"pt1;2",
				echoScores(round, score1, score2),
			)
			score2 += 3
			out = append(out,
				"hl2;61",
				"pt2;3",
				echoScores(round, score1, score2),
			)
		} else {
			score2 += 2
			out = append(out,
				"hl2;52",
				"pt2;2",
				echoScores(round, score1, score2),
			)
			score1 += 3
			out = append(out,
				"hl1;70",
				"pt1;3",
				echoScores(round, score1, score2),
			)
		}

		// One challenge with a decision mid-bout.
		if round == 1 {
			out = append(out,
				"clk;1:12;stop",
				"ch1;",
				"ch1;accepted",
				"clk;1:12;start",
			)
			score1++
			out = append(out, "pt1;1", echoScores(round, score1, score2))
		}

		// A warning and an injury timeout late in the bout.
		if round == cfg.Rounds {
			out = append(out,
				"wg2",
				"clk;0:40;stop",
				"inj;1:00",
				"clk;0:40;start",
			)
		}

		out = append(out, "clk;0:00;stop")
		if round < cfg.Rounds {
			out = append(out, "brk;1:00;rest")
		}
	}

	winner := "BLUE"
	if score2 > score1 {
		winner = "RED"
	}
	out = append(out,
		fmt.Sprintf("cur;%d;%d", score1, score2),
		"win;"+winner,
		fmt.Sprintf("wrd;%s;%d", winner, cfg.Rounds),
	)
	return out
}

func echoScores(round, s1, s2 int) string {
	return fmt.Sprintf("sc%d;%d;%d", round, s1, s2)
}

// formatClock renders whole seconds as the M:SS display the wire uses.
func formatClock(seconds int) string {
	return strconv.Itoa(seconds/60) + ":" + fmt.Sprintf("%02d", seconds%60)
}
