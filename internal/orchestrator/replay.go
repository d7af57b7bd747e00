package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/ringcast/ringcast/internal/domain/model"
	"github.com/ringcast/ringcast/pkg/logger"
	"github.com/ringcast/ringcast/pkg/metrics"
)

// onChallenge reacts to video review events. A fresh challenge saves the
// replay buffer and opens the clip; a decision closes the playback again.
func (o *Orchestrator) onChallenge(ctx context.Context, ev model.Event) {
	challenge, ok := ev.Payload.(model.Challenge)
	if !ok {
		return
	}

	if challenge.Decided {
		if o.player != nil {
			o.player.Close(ctx)
		}
		return
	}

	if !o.replayAutoTrigger {
		return
	}

	// The clip save and path poll take seconds. They must not hold up the
	// event pipeline, so the whole replay path runs detached. The event id
	// is carried along to link the video back to the challenge.
	eventID := ev.ID
	go func() {
		path, err := o.TriggerReplay(ctx)
		if err != nil {
			o.log.Warn(ctx, "replay unavailable",
				logger.String("event_id", eventID), logger.Error(err))
			return
		}
		if o.store != nil {
			// Negative seek: seconds before the end of the clip.
			if err := o.store.AttachVideo(ctx, eventID, path, -o.replaySeekBack); err != nil {
				o.log.Error(ctx, "linking replay to event failed",
					logger.String("event_id", eventID), logger.Error(err))
			}
		}
	}()
}

// TriggerReplay saves the replay buffer, waits for the clip to land on
// disk, and opens it in the external player seeked close to the end. It
// returns the clip path, or ErrReplayNotFound when the deadline passes.
func (o *Orchestrator) TriggerReplay(ctx context.Context) (string, error) {
	o.mu.Lock()
	previous := o.lastReplayPath
	o.mu.Unlock()

	if err := o.control.SaveReplayBuffer(ctx); err != nil {
		return "", fmt.Errorf("saving replay buffer: %w", err)
	}

	// Negative seek offset: playback starts that many seconds before the
	// end of the clip.
	req := model.ReplayRequest{
		Deadline:   o.now().Add(o.replayMaxWait),
		SeekOffset: -o.replaySeekBack,
	}

	path, err := o.awaitReplay(ctx, req, previous)
	if err != nil {
		metrics.RecordReplayNotFound()
		return "", err
	}

	o.mu.Lock()
	o.lastReplayPath = path
	o.mu.Unlock()
	metrics.RecordReplaySaved()

	if o.player != nil {
		if err := o.player.Open(ctx, path, req.SeekOffset); err != nil {
			o.log.Warn(ctx, "opening replay failed",
				logger.String("path", path), logger.Error(err))
		}
	}
	return path, nil
}

// awaitReplay polls the tool until a clip newer than previous appears or
// the request deadline passes. The save is asynchronous on the tool side;
// polling is the only way to learn the final path.
func (o *Orchestrator) awaitReplay(ctx context.Context, req model.ReplayRequest, previous string) (string, error) {
	ticker := time.NewTicker(o.replayPollInterval)
	defer ticker.Stop()

	for {
		path, err := o.control.LastReplayPath(ctx)
		if err == nil && path != "" && path != previous {
			return path, nil
		}
		if err != nil {
			o.log.Debug(ctx, "replay path not ready", logger.Error(err))
		}

		if o.now().After(req.Deadline) {
			return "", ErrReplayNotFound
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
}
