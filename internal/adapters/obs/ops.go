package obs

import "context"

// RecordStatus reports the state of the tool's recording output.
type RecordStatus struct {
	Active   bool    `json:"outputActive"`
	Paused   bool    `json:"outputPaused"`
	Timecode string  `json:"outputTimecode"`
	Duration float64 `json:"outputDuration"`
	Bytes    int64   `json:"outputBytes"`
}

// StreamStatus reports the state of the tool's streaming output.
type StreamStatus struct {
	Active        bool    `json:"outputActive"`
	Reconnecting  bool    `json:"outputReconnecting"`
	Timecode      string  `json:"outputTimecode"`
	Duration      float64 `json:"outputDuration"`
	Bytes         int64   `json:"outputBytes"`
	SkippedFrames int64   `json:"outputSkippedFrames"`
	TotalFrames   int64   `json:"outputTotalFrames"`
}

// Version describes the tool and protocol versions.
type Version struct {
	ToolVersion     string `json:"obsVersion"`
	ProtocolVersion string `json:"obsWebSocketVersion"`
	RPCVersion      int    `json:"rpcVersion"`
	Platform        string `json:"platform"`
}

// Stats carries the tool's runtime statistics.
type Stats struct {
	CPUUsage            float64 `json:"cpuUsage"`
	MemoryUsage         float64 `json:"memoryUsage"`
	ActiveFPS           float64 `json:"activeFps"`
	AverageFrameTime    float64 `json:"averageFrameRenderTime"`
	RenderSkippedFrames int64   `json:"renderSkippedFrames"`
	OutputSkippedFrames int64   `json:"outputSkippedFrames"`
}

// StartRecording begins a new recording output.
func (c *Client) StartRecording(ctx context.Context) error {
	return c.call(ctx, "StartRecord", nil, nil)
}

// StopRecording stops the recording output and returns the written file path.
func (c *Client) StopRecording(ctx context.Context) (string, error) {
	var out struct {
		OutputPath string `json:"outputPath"`
	}
	if err := c.call(ctx, "StopRecord", nil, &out); err != nil {
		return "", err
	}
	return out.OutputPath, nil
}

// RecordingStatus queries the recording output state.
func (c *Client) RecordingStatus(ctx context.Context) (RecordStatus, error) {
	var out RecordStatus
	err := c.call(ctx, "GetRecordStatus", nil, &out)
	return out, err
}

// StartStreaming begins the streaming output.
func (c *Client) StartStreaming(ctx context.Context) error {
	return c.call(ctx, "StartStream", nil, nil)
}

// StopStreaming stops the streaming output.
func (c *Client) StopStreaming(ctx context.Context) error {
	return c.call(ctx, "StopStream", nil, nil)
}

// StreamingStatus queries the streaming output state.
func (c *Client) StreamingStatus(ctx context.Context) (StreamStatus, error) {
	var out StreamStatus
	err := c.call(ctx, "GetStreamStatus", nil, &out)
	return out, err
}

// StartReplayBuffer starts the rolling replay buffer.
func (c *Client) StartReplayBuffer(ctx context.Context) error {
	return c.call(ctx, "StartReplayBuffer", nil, nil)
}

// StopReplayBuffer stops the rolling replay buffer.
func (c *Client) StopReplayBuffer(ctx context.Context) error {
	return c.call(ctx, "StopReplayBuffer", nil, nil)
}

// SaveReplayBuffer asks the tool to flush the replay buffer to disk. The
// file path becomes available asynchronously via LastReplayPath.
func (c *Client) SaveReplayBuffer(ctx context.Context) error {
	return c.call(ctx, "SaveReplayBuffer", nil, nil)
}

// LastReplayPath returns the path of the most recently saved replay, or an
// empty string when none has been saved yet.
func (c *Client) LastReplayPath(ctx context.Context) (string, error) {
	var out struct {
		SavedReplayPath string `json:"savedReplayPath"`
	}
	if err := c.call(ctx, "GetLastReplayBufferReplay", nil, &out); err != nil {
		return "", err
	}
	return out.SavedReplayPath, nil
}

// SetRecordingDirectory points the recording output at a directory.
func (c *Client) SetRecordingDirectory(ctx context.Context, dir string) error {
	req := struct {
		RecordDirectory string `json:"recordDirectory"`
	}{RecordDirectory: dir}
	return c.call(ctx, "SetRecordDirectory", req, nil)
}

// SetFilenameTemplate sets the output filename formatting for the active
// profile. The template uses the tool's %-placeholder syntax.
func (c *Client) SetFilenameTemplate(ctx context.Context, template string) error {
	req := struct {
		ParameterCategory string `json:"parameterCategory"`
		ParameterName     string `json:"parameterName"`
		ParameterValue    string `json:"parameterValue"`
	}{
		ParameterCategory: "Output",
		ParameterName:     "FilenameFormatting",
		ParameterValue:    template,
	}
	return c.call(ctx, "SetProfileParameter", req, nil)
}

// GetCurrentScene returns the active program scene name.
func (c *Client) GetCurrentScene(ctx context.Context) (string, error) {
	var out struct {
		SceneName string `json:"currentProgramSceneName"`
	}
	if err := c.call(ctx, "GetCurrentProgramScene", nil, &out); err != nil {
		return "", err
	}
	return out.SceneName, nil
}

// SetCurrentScene switches the active program scene.
func (c *Client) SetCurrentScene(ctx context.Context, name string) error {
	req := struct {
		SceneName string `json:"sceneName"`
	}{SceneName: name}
	return c.call(ctx, "SetCurrentProgramScene", req, nil)
}

// ListScenes returns all scene names, front of the list first.
func (c *Client) ListScenes(ctx context.Context) ([]string, error) {
	var out struct {
		Scenes []struct {
			SceneName string `json:"sceneName"`
		} `json:"scenes"`
	}
	if err := c.call(ctx, "GetSceneList", nil, &out); err != nil {
		return nil, err
	}
	names := make([]string, len(out.Scenes))
	for i, s := range out.Scenes {
		names[i] = s.SceneName
	}
	return names, nil
}

// GetVersion queries tool and protocol version information.
func (c *Client) GetVersion(ctx context.Context) (Version, error) {
	var out Version
	err := c.call(ctx, "GetVersion", nil, &out)
	return out, err
}

// GetStats queries the tool's runtime statistics.
func (c *Client) GetStats(ctx context.Context) (Stats, error) {
	var out Stats
	err := c.call(ctx, "GetStats", nil, &out)
	return out, err
}
