// Package pss decodes the semicolon-delimited PSS scoring wire protocol.
//
// Decoding never fails hard: anything unknown or truncated becomes a Raw
// event so a malformed datagram can never take down the ingestion path.
package pss

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ringcast/ringcast/internal/domain/model"
	"github.com/ringcast/ringcast/pkg/metrics"
)

// Leading tokens of the PSS vocabulary.
const (
	tokenPoints1      = "pt1"
	tokenPoints2      = "pt2"
	tokenHitLevel1    = "hl1"
	tokenHitLevel2    = "hl2"
	tokenWarning1     = "wg1"
	tokenWarning2     = "wg2"
	tokenChallenge0   = "ch0"
	tokenChallenge1   = "ch1"
	tokenChallenge2   = "ch2"
	tokenInjury       = "inj"
	tokenBreak        = "brk"
	tokenClock        = "clk"
	tokenRound        = "rnd"
	tokenWinner       = "win"
	tokenWinnerRounds = "wrd"
	tokenMatchConfig  = "mch"
	tokenAthlete1     = "at1"
	tokenAthlete2     = "at2"
	tokenCurrent      = "cur"
	tokenReady        = "rdy"
	tokenLoaded       = "load"

	scoresTokenPrefix = "sc" // sc1..scN, per-round score echo
)

// Challenge decision parameters.
const (
	challengeAccepted = "accepted"
	challengeRejected = "rejected"
)

// Decode turns one datagram into a typed event. capturedAt is the arrival
// timestamp recorded by the listener, not any in-payload time field.
func Decode(raw []byte, capturedAt time.Time) model.Event {
	text := strings.TrimRight(string(raw), "\r\n")
	ev := model.Event{
		ID:         uuid.NewString(),
		Kind:       model.KindRaw,
		CapturedAt: capturedAt,
		Raw:        text,
	}

	fields := strings.Split(text, ";")
	if len(fields) == 0 || fields[0] == "" {
		metrics.RecordDatagramUnrecognized()
		return ev
	}

	token := fields[0]
	args := trimTrailing(fields[1:])

	kind, payload, ok := decodeBody(token, args)
	if !ok {
		metrics.RecordDatagramUnrecognized()
		return ev
	}

	ev.Kind = kind
	ev.Payload = payload
	return ev
}

// trimTrailing drops the empty field produced by a trailing delimiter.
func trimTrailing(args []string) []string {
	for len(args) > 0 && args[len(args)-1] == "" {
		args = args[:len(args)-1]
	}
	return args
}

func decodeBody(token string, args []string) (model.Kind, model.Payload, bool) {
	switch token {
	case tokenPoints1, tokenPoints2:
		return decodePoints(athleteOf(token), args)
	case tokenHitLevel1, tokenHitLevel2:
		return decodeHitLevel(athleteOf(token), args)
	case tokenWarning1, tokenWarning2:
		return model.KindWarning, model.Warning{Athlete: athleteOf(token)}, true
	case tokenChallenge0, tokenChallenge1, tokenChallenge2:
		return decodeChallenge(athleteOf(token), args)
	case tokenInjury:
		return decodeInjury(args)
	case tokenBreak:
		return decodeBreak(args)
	case tokenClock:
		return decodeClock(args)
	case tokenRound:
		return decodeRound(args)
	case tokenWinner:
		return decodeWinner(args)
	case tokenWinnerRounds:
		return decodeWinnerRounds(args)
	case tokenMatchConfig:
		return decodeMatchConfig(args)
	case tokenAthlete1, tokenAthlete2:
		return decodeAthlete(athleteOf(token), args)
	case tokenCurrent:
		return decodeCurrentScores(args)
	case tokenReady:
		return model.KindFightReady, nil, true
	case tokenLoaded:
		return model.KindFightLoaded, nil, true
	}
	if strings.HasPrefix(token, scoresTokenPrefix) {
		return decodeScores(token, args)
	}
	return model.KindRaw, nil, false
}

// athleteOf reads the trailing slot digit of tokens like pt1/hl2/ch0.
func athleteOf(token string) int {
	n, err := strconv.Atoi(token[len(token)-1:])
	if err != nil {
		return 0
	}
	return n
}

func decodePoints(athlete int, args []string) (model.Kind, model.Payload, bool) {
	if len(args) < 1 {
		return model.KindRaw, nil, false
	}
	code, err := strconv.Atoi(args[0])
	if err != nil || code < 1 || code > 5 {
		return model.KindRaw, nil, false
	}
	return model.KindPoints, model.Points{Athlete: athlete, Code: code}, true
}

func decodeHitLevel(athlete int, args []string) (model.Kind, model.Payload, bool) {
	if len(args) < 1 {
		return model.KindRaw, nil, false
	}
	level, err := strconv.Atoi(args[0])
	if err != nil || level < 1 || level > 100 {
		return model.KindRaw, nil, false
	}
	return model.KindHitLevel, model.HitLevel{Athlete: athlete, Level: level}, true
}

func decodeChallenge(source int, args []string) (model.Kind, model.Payload, bool) {
	c := model.Challenge{Source: source}
	if len(args) > 0 {
		switch args[0] {
		case challengeAccepted:
			c.Decided = true
			c.Accepted = true
		case challengeRejected:
			c.Decided = true
		default:
			return model.KindRaw, nil, false
		}
	}
	return model.KindChallenge, c, true
}

func decodeInjury(args []string) (model.Kind, model.Payload, bool) {
	if len(args) < 1 {
		return model.KindRaw, nil, false
	}
	d, err := ParseClock(args[0])
	if err != nil {
		return model.KindRaw, nil, false
	}
	return model.KindInjury, model.Injury{Display: args[0], Time: d}, true
}

func decodeBreak(args []string) (model.Kind, model.Payload, bool) {
	if len(args) < 2 {
		return model.KindRaw, nil, false
	}
	d, err := ParseClock(args[0])
	if err != nil {
		return model.KindRaw, nil, false
	}
	return model.KindBreak, model.Break{Display: args[0], Time: d, Phase: args[1]}, true
}

func decodeClock(args []string) (model.Kind, model.Payload, bool) {
	if len(args) < 2 {
		return model.KindRaw, nil, false
	}
	d, err := ParseClock(args[0])
	if err != nil {
		return model.KindRaw, nil, false
	}
	var action model.ClockAction
	switch args[1] {
	case "start":
		action = model.ClockStart
	case "stop":
		action = model.ClockStop
	default:
		return model.KindRaw, nil, false
	}
	return model.KindClock, model.Clock{Display: args[0], Time: d, Action: action}, true
}

func decodeRound(args []string) (model.Kind, model.Payload, bool) {
	if len(args) < 1 {
		return model.KindRaw, nil, false
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 {
		return model.KindRaw, nil, false
	}
	return model.KindRound, model.Round{Number: n}, true
}

func decodeWinner(args []string) (model.Kind, model.Payload, bool) {
	if len(args) < 1 || args[0] == "" {
		return model.KindRaw, nil, false
	}
	return model.KindWinner, model.Winner{Color: args[0]}, true
}

func decodeWinnerRounds(args []string) (model.Kind, model.Payload, bool) {
	if len(args) < 2 {
		return model.KindRaw, nil, false
	}
	return model.KindWinnerRounds, model.WinnerRounds{Color: args[0], Rounds: args[1]}, true
}

// decodeMatchConfig parses `mch;<number>;<phase>;<rounds>;<round seconds>;<countdown format>;`.
func decodeMatchConfig(args []string) (model.Kind, model.Payload, bool) {
	if len(args) < 1 || args[0] == "" {
		return model.KindRaw, nil, false
	}
	cfg := model.MatchConfig{Number: args[0]}
	if len(args) > 1 {
		cfg.Phase = args[1]
	}
	if len(args) > 2 {
		n, err := strconv.Atoi(args[2])
		if err != nil {
			return model.KindRaw, nil, false
		}
		cfg.Rounds = n
	}
	if len(args) > 3 {
		secs, err := strconv.Atoi(args[3])
		if err != nil {
			return model.KindRaw, nil, false
		}
		cfg.RoundDuration = time.Duration(secs) * time.Second
	}
	if len(args) > 4 {
		cfg.CountdownFormat = args[4]
	}
	return model.KindMatchConfig, cfg, true
}

func decodeAthlete(slot int, args []string) (model.Kind, model.Payload, bool) {
	if len(args) < 1 || args[0] == "" {
		return model.KindRaw, nil, false
	}
	a := model.Athletes{Slot: slot, Name: args[0]}
	if len(args) > 1 {
		a.Country = args[1]
	}
	return model.KindAthletes, a, true
}

func decodeCurrentScores(args []string) (model.Kind, model.Payload, bool) {
	if len(args) < 2 {
		return model.KindRaw, nil, false
	}
	s1, err1 := strconv.Atoi(args[0])
	s2, err2 := strconv.Atoi(args[1])
	if err1 != nil || err2 != nil {
		return model.KindRaw, nil, false
	}
	return model.KindCurrentScores, model.CurrentScores{Athlete1: s1, Athlete2: s2}, true
}

func decodeScores(token string, args []string) (model.Kind, model.Payload, bool) {
	round, err := strconv.Atoi(strings.TrimPrefix(token, scoresTokenPrefix))
	if err != nil || round < 1 || len(args) < 2 {
		return model.KindRaw, nil, false
	}
	s1, err1 := strconv.Atoi(args[0])
	s2, err2 := strconv.Atoi(args[1])
	if err1 != nil || err2 != nil {
		return model.KindRaw, nil, false
	}
	return model.KindScores, model.Scores{Round: round, Athlete1: s1, Athlete2: s2}, true
}

// ParseClock parses a `M:SS` or `MM:SS` display clock into a duration.
func ParseClock(s string) (time.Duration, error) {
	mins, secs, found := strings.Cut(s, ":")
	if !found {
		return 0, &ClockFormatError{Value: s}
	}
	m, err := strconv.Atoi(mins)
	if err != nil || m < 0 {
		return 0, &ClockFormatError{Value: s}
	}
	sec, err := strconv.Atoi(secs)
	if err != nil || sec < 0 || sec > 59 {
		return 0, &ClockFormatError{Value: s}
	}
	return time.Duration(m)*time.Minute + time.Duration(sec)*time.Second, nil
}
