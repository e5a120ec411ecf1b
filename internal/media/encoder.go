package media

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// VideoEncoder abstracts the media transcoding tool. The assembler only ever
// needs these five capabilities.
type VideoEncoder interface {
	// ProbeDuration returns the duration of an audio file in seconds.
	ProbeDuration(ctx context.Context, path string) (float64, error)

	// EncodeSegment renders one scene: the image held static for exactly
	// duration seconds, paired with the narration track.
	EncodeSegment(ctx context.Context, imagePath, audioPath string, duration float64, outPath string) error

	// Concat joins finished segments, in order, into one video with a single
	// combined video+audio stream.
	Concat(ctx context.Context, segmentPaths []string, outPath string) error

	// MixAudio lays a looped background music track under the video's audio.
	MixAudio(ctx context.Context, videoPath, musicPath, outPath string) error

	// BurnSubtitles renders an .srt file into the video frames.
	BurnSubtitles(ctx context.Context, videoPath, subtitlePath, outPath string) error
}

// FFmpegEncoder shells out to ffmpeg/ffprobe.
type FFmpegEncoder struct {
	ffmpegBin  string
	ffprobeBin string
	logger     *zap.Logger
}

var _ VideoEncoder = (*FFmpegEncoder)(nil)

func NewFFmpegEncoder(ffmpegBin, ffprobeBin string, logger *zap.Logger) *FFmpegEncoder {
	if ffmpegBin == "" {
		ffmpegBin = "ffmpeg"
	}
	if ffprobeBin == "" {
		ffprobeBin = "ffprobe"
	}
	return &FFmpegEncoder{ffmpegBin: ffmpegBin, ffprobeBin: ffprobeBin, logger: logger.Named("FFmpegEncoder")}
}

func (e *FFmpegEncoder) ProbeDuration(ctx context.Context, path string) (float64, error) {
	out, err := exec.CommandContext(ctx, e.ffprobeBin,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	).Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: %w", path, err)
	}
	dur, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: unparsable duration %q: %w", path, out, err)
	}
	return dur, nil
}

func (e *FFmpegEncoder) EncodeSegment(ctx context.Context, imagePath, audioPath string, duration float64, outPath string) error {
	args := []string{"-y",
		"-loop", "1",
		"-i", imagePath,
		"-i", audioPath,
		"-t", fmt.Sprintf("%.3f", duration),
		"-c:v", "libx264",
		"-tune", "stillimage",
		"-preset", "fast",
		"-pix_fmt", "yuv420p",
		"-vf", "scale=1280:720:force_original_aspect_ratio=decrease,pad=1280:720:(ow-iw)/2:(oh-ih)/2,setsar=1",
		"-c:a", "aac",
		"-shortest",
		outPath,
	}
	return e.run(ctx, args)
}

func (e *FFmpegEncoder) Concat(ctx context.Context, segmentPaths []string, outPath string) error {
	// concat demuxer wants a list file; segments were encoded with identical
	// parameters so stream copy is safe.
	listFile := filepath.Join(filepath.Dir(outPath), "concat_list.txt")
	var lines []string
	for _, p := range segmentPaths {
		lines = append(lines, fmt.Sprintf("file '%s'", p))
	}
	if err := os.WriteFile(listFile, []byte(strings.Join(lines, "\n")), 0o644); err != nil {
		return fmt.Errorf("failed to write concat list: %w", err)
	}
	defer os.Remove(listFile)

	args := []string{"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listFile,
		"-c", "copy",
		outPath,
	}
	return e.run(ctx, args)
}

func (e *FFmpegEncoder) MixAudio(ctx context.Context, videoPath, musicPath, outPath string) error {
	args := []string{"-y",
		"-i", videoPath,
		"-stream_loop", "-1",
		"-i", musicPath,
		"-filter_complex", "[1:a]volume=0.2[bg];[0:a][bg]amix=inputs=2:duration=first[a]",
		"-map", "0:v",
		"-map", "[a]",
		"-c:v", "copy",
		"-c:a", "aac",
		"-shortest",
		outPath,
	}
	return e.run(ctx, args)
}

func (e *FFmpegEncoder) BurnSubtitles(ctx context.Context, videoPath, subtitlePath, outPath string) error {
	args := []string{"-y",
		"-i", videoPath,
		"-vf", "subtitles=" + subtitlePath,
		"-c:a", "copy",
		outPath,
	}
	return e.run(ctx, args)
}

func (e *FFmpegEncoder) run(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, e.ffmpegBin, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		e.logger.Error("ffmpeg failed",
			zap.Strings("args", args),
			zap.ByteString("output", tail(out, 2048)),
			zap.Error(err))
		return fmt.Errorf("ffmpeg %s: %w", args[len(args)-1], err)
	}
	return nil
}

func tail(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[len(b)-n:]
}
