package vidq

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildArgs(t *testing.T) {
	template := "downloads/abc.%(ext)s"

	args := buildArgs(DownloadRequest{}, template)
	require.Equal(t, []string{
		"--no-warnings", "--newline", "--print-json", "-o", template,
		"-f", "bestvideo+bestaudio/best",
	}, args)

	args = buildArgs(DownloadRequest{AudioOnly: true}, template)
	require.Equal(t, []string{
		"--no-warnings", "--newline", "--print-json", "-o", template,
		"-f", "bestaudio/best", "-x", "--audio-format", "mp3",
	}, args)

	args = buildArgs(DownloadRequest{Format: "bestvideo[height<=720]"}, template)
	require.Equal(t, []string{
		"--no-warnings", "--newline", "--print-json", "-o", template,
		"-f", "bestvideo[height<=720]",
	}, args)

	// Audio extraction wins over an explicit format.
	args = buildArgs(DownloadRequest{AudioOnly: true, Format: "mp4"}, template)
	require.Contains(t, args, "-x")
	require.NotContains(t, args, "mp4")
}

func TestProgressPercent(t *testing.T) {
	cases := []struct {
		line string
		want int
		ok   bool
	}{
		{"[download]   0.0% of 10.00MiB at 1.00MiB/s ETA 00:10", 0, true},
		{"[download]  42.1% of 10.00MiB at 1.00MiB/s ETA 00:05", 42, true},
		{"[download] 100% of 10.00MiB in 00:10", 100, true},
		{"[download] 100.0% of 10.00MiB in 00:10", 100, true},
		{"[download] Destination: downloads/abc.mp4", 0, false},
		{"[ffmpeg] Merging formats into downloads/abc.mp4", 0, false},
		{"", 0, false},
	}
	for _, c := range cases {
		got, ok := progressPercent(c.line)
		require.Equal(t, c.ok, ok, c.line)
		require.Equal(t, c.want, got, c.line)
	}
}

func TestParseInfoLine(t *testing.T) {
	in, ok := parseInfoLine(`{"title":"My Clip","ext":"mp4","_filename":"downloads/abc.mp4"}`)
	require.True(t, ok)
	require.Equal(t, "My Clip", in.Title)
	require.Equal(t, "mp4", in.Ext)
	require.Equal(t, "downloads/abc.mp4", in.Filename)

	in, ok = parseInfoLine(`  {"filepath":"downloads/abc.webm"}  `)
	require.True(t, ok)
	require.Equal(t, "downloads/abc.webm", in.Filepath)

	_, ok = parseInfoLine("[download] Destination: downloads/abc.mp4")
	require.False(t, ok)
	_, ok = parseInfoLine("{not json")
	require.False(t, ok)
	_, ok = parseInfoLine(`{"id":"xyz"}`)
	require.False(t, ok)
}

func TestSanitizeFilename(t *testing.T) {
	require.Equal(t, "a_b_c_d_e_f_g_h_i", sanitizeFilename(`a\b/c*d?e:f"g<h>i`))
	require.Equal(t, "plain title", sanitizeFilename("plain title"))
	require.Equal(t, "", sanitizeFilename(""))
}
