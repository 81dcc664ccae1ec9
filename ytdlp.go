package vidq

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// YTDLP invokes the yt-dlp binary as the external downloader. The tool is
// treated as opaque: it is given the URL, an output template and a format
// directive, and reports the produced file via its JSON output line.
type YTDLP struct {
	// Bin is the yt-dlp executable. Defaults to "yt-dlp" on PATH.
	Bin string
	// ExtraArgs are appended to every invocation.
	ExtraArgs []string
}

// NewYTDLP creates a downloader using the yt-dlp binary on PATH.
func NewYTDLP() *YTDLP { return &YTDLP{Bin: "yt-dlp"} }

var (
	progressRe = regexp.MustCompile(`\[download\]\s+(\d{1,3}(?:\.\d+)?)%`)
	badChars   = regexp.MustCompile(`[\\/*?:"<>|]`)
)

// ytdlpInfo is the subset of yt-dlp's JSON output the worker needs.
type ytdlpInfo struct {
	Title    string `json:"title"`
	Ext      string `json:"ext"`
	Filepath string `json:"filepath"`
	Filename string `json:"_filename"`
}

// Download runs yt-dlp to completion, reporting progress lines through
// ReportProgress. A non-zero exit yields an error carrying the stderr tail.
func (y *YTDLP) Download(ctx context.Context, req DownloadRequest) (*DownloadResult, error) {
	bin := y.Bin
	if bin == "" {
		bin = "yt-dlp"
	}
	template := filepath.Join(req.OutputDir, req.OutputStem+".%(ext)s")
	args := append(buildArgs(req, template), y.ExtraArgs...)
	args = append(args, req.URL)

	cmd := exec.CommandContext(ctx, bin, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start yt-dlp: %w", err)
	}

	var info *ytdlpInfo
	sc := bufio.NewScanner(stdout)
	// Info JSON lines routinely exceed the default scanner buffer.
	sc.Buffer(make([]byte, 64*1024), 8*1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if p, ok := progressPercent(line); ok {
			ReportProgress(ctx, p)
			continue
		}
		if in, ok := parseInfoLine(line); ok {
			info = in
		}
	}

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("yt-dlp failed: %w: %s", err, stderrTail(&stderr))
	}
	if info == nil {
		return nil, fmt.Errorf("yt-dlp produced no info output")
	}

	path := info.Filepath
	if path == "" {
		path = info.Filename
	}
	ext := info.Ext
	if req.AudioOnly {
		// Extraction rewrites the artifact to mp3 after download.
		ext = "mp3"
		path = filepath.Join(req.OutputDir, req.OutputStem+".mp3")
	}
	if path == "" {
		if ext == "" {
			ext = "mp4"
		}
		path = filepath.Join(req.OutputDir, req.OutputStem+"."+ext)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("downloaded file not found at %q: %w", path, err)
	}
	if ext == "" {
		ext = strings.TrimPrefix(filepath.Ext(path), ".")
	}

	title := info.Title
	if title == "" {
		title = req.OutputStem
	}
	return &DownloadResult{
		FilePath:         path,
		OriginalFilename: sanitizeFilename(title) + "." + ext,
	}, nil
}

// buildArgs assembles the yt-dlp invocation minus extra args and the URL.
func buildArgs(req DownloadRequest, template string) []string {
	args := []string{"--no-warnings", "--newline", "--print-json", "-o", template}
	switch {
	case req.AudioOnly:
		args = append(args, "-f", "bestaudio/best", "-x", "--audio-format", "mp3")
	case req.Format != "":
		args = append(args, "-f", req.Format)
	default:
		args = append(args, "-f", "bestvideo+bestaudio/best")
	}
	return args
}

// progressPercent extracts the percentage from a "[download]  42.1% ..." line.
func progressPercent(line string) (int, bool) {
	m := progressRe.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	f, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	if f > 100 {
		f = 100
	}
	return int(f), true
}

// parseInfoLine decodes a candidate info JSON line.
func parseInfoLine(line string) (*ytdlpInfo, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "{") {
		return nil, false
	}
	var in ytdlpInfo
	if err := (&JSONEncoder{}).Decode([]byte(line), &in); err != nil {
		return nil, false
	}
	if in.Title == "" && in.Filename == "" && in.Filepath == "" {
		return nil, false
	}
	return &in, true
}

// sanitizeFilename replaces characters that are unsafe in filenames.
func sanitizeFilename(name string) string {
	return badChars.ReplaceAllString(name, "_")
}

func stderrTail(b *bytes.Buffer) string {
	s := strings.TrimSpace(b.String())
	const max = 512
	if len(s) > max {
		s = "..." + s[len(s)-max:]
	}
	return s
}
