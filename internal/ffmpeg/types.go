package ffmpeg

import "time"

// MediaInfo contains metadata about a media file
type MediaInfo struct {
	FilePath   string
	Duration   time.Duration
	Bitrate    int64
	HasVideo   bool
	Width      int
	Height     int
	FPS        float64
	FrameCount int
	VideoCodec string

	HasAudio        bool
	AudioCodec      string
	AudioSampleRate int
	AudioChannels   int
}

// Progress represents ffmpeg progress data
type Progress struct {
	Frame         int
	FPS           float64
	OutTimeMicros int64
	Time          string
	Speed         string
}

// RunOptions configures ffmpeg execution
type RunOptions struct {
	Args            []string
	ProgressHandler ProgressFunc
	LogHandler      func(line string)
}

// ProgressFunc is a callback for progress updates during ffmpeg operations.
// Called periodically with progress information as the operation executes.
type ProgressFunc func(*Progress)

// Default encoding settings for re-encoded clips
const (
	DefaultCRF        = 23
	DefaultVideoCodec = "libx264"
	DefaultAudioCodec = "aac"
)
