// Package dispatch hands download items to an external downloader. The
// aria2c path batches everything into one process driven by generated
// config and input files; the yt-dlp path runs one process per item.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/mlowther/vidgrab/models"
	"github.com/mlowther/vidgrab/pkg/storage"
)

const (
	Aria2ConfName  = "aria2.conf"
	Aria2InputName = "aria2_downloads.txt"

	ytdlpItemTimeout = 5 * time.Minute
)

// ytdlpItemDelay spaces out per-item processes. Variable so tests can zero it.
var ytdlpItemDelay = 2 * time.Second

// ErrToolMissing reports a downloader binary that is not on PATH.
var ErrToolMissing = errors.New("downloader not found")

// ItemOutcome is the per-item result of a yt-dlp pass.
type ItemOutcome struct {
	Index int
	Err   error
}

// Result summarizes a download batch. Outcomes is populated on the yt-dlp
// path only; the aria2c batch succeeds or fails as a whole.
type Result struct {
	Total     int
	Succeeded int
	Failed    int
	Outcomes  []ItemOutcome
}

// lookPath and runCommand are swapped out in tests.
var (
	lookPath = exec.LookPath

	runCommand = func(ctx context.Context, name string, args ...string) error {
		cmd := exec.CommandContext(ctx, name, args...)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		return cmd.Run()
	}
)

// Aria2Conf renders the batch download configuration: 16-way parallelism,
// five tries with a 30s backoff, overwrite on collision.
func Aria2Conf(downloadDir string) string {
	var b strings.Builder
	b.WriteString("# generated, rewritten on every download run\n")
	b.WriteString("max-concurrent-downloads=16\n")
	b.WriteString("split=16\n")
	b.WriteString("min-split-size=1M\n")
	b.WriteString("max-connection-per-server=16\n")
	b.WriteString("piece-length=1M\n")
	b.WriteString("continue=true\n")
	b.WriteString("max-tries=5\n")
	b.WriteString("retry-wait=30\n")
	b.WriteString("timeout=600\n")
	b.WriteString("connect-timeout=60\n")
	b.WriteString("allow-overwrite=true\n")
	b.WriteString("file-allocation=trunc\n")
	fmt.Fprintf(&b, "dir=%s\n", downloadDir)
	b.WriteString("log-level=notice\n")
	b.WriteString("log=aria2c.log\n")
	b.WriteString("console-log-level=notice\n")
	b.WriteString("summary-interval=60\n")
	b.WriteString("disk-cache=64M\n")
	b.WriteString("max-file-not-found=5\n")
	b.WriteString("enable-http-keep-alive=true\n")
	b.WriteString("check-certificate=false\n")
	b.WriteString("http-no-cache=true\n")
	return b.String()
}

// Aria2Input renders the input file: one stanza per item, the out= name
// indented by two spaces, stanzas separated by a blank line.
func Aria2Input(items []models.DownloadItem) string {
	var b strings.Builder
	for _, item := range items {
		fmt.Fprintf(&b, "%s\n", item.Video.URL)
		fmt.Fprintf(&b, "  out=%s%s\n", item.Filename, urlExtension(item.Video.URL))
		b.WriteString("\n")
	}
	return b.String()
}

// urlExtension pulls the media extension off the URL path, defaulting to
// .mp4 when the path has none aria2c could use.
func urlExtension(url string) string {
	if i := strings.IndexAny(url, "?#"); i >= 0 {
		url = url[:i]
	}
	ext := strings.ToLower(filepath.Ext(url))
	switch ext {
	case ".mp4", ".m4v", ".webm", ".mkv", ".mov", ".m3u8":
		return ext
	}
	return ".mp4"
}

// EnsureAria2 checks for the binary and, when missing, makes one attempt to
// install it through Homebrew before re-probing.
func EnsureAria2(ctx context.Context) error {
	if _, err := lookPath("aria2c"); err == nil {
		return nil
	}
	slog.Info("aria2c not found, attempting brew install")
	if err := runCommand(ctx, "brew", "install", "aria2"); err != nil {
		return fmt.Errorf("aria2c: %w (install it with: brew install aria2)", ErrToolMissing)
	}
	if _, err := lookPath("aria2c"); err != nil {
		return fmt.Errorf("aria2c: %w (install it with: brew install aria2)", ErrToolMissing)
	}
	return nil
}

// RunAria2 writes the conf and input files into the data directory and runs
// one aria2c process over the whole batch. aria2c's own retry settings do
// the per-item error handling, so a non-zero exit fails the batch as a unit.
func RunAria2(ctx context.Context, cfg models.Config, items []models.DownloadItem) (Result, error) {
	res := Result{Total: len(items)}
	if len(items) == 0 {
		return res, nil
	}
	if err := EnsureAria2(ctx); err != nil {
		return res, err
	}

	store := &storage.Storage{}
	if err := store.EnsureDir(cfg.DownloadDir); err != nil {
		return res, err
	}

	confPath := cfg.DataPath(Aria2ConfName)
	inputPath := cfg.DataPath(Aria2InputName)
	if err := store.SaveFile(confPath, []byte(Aria2Conf(cfg.DownloadDir))); err != nil {
		return res, err
	}
	if err := store.SaveFile(inputPath, []byte(Aria2Input(items))); err != nil {
		return res, err
	}

	slog.Info("starting aria2c batch", "videos", len(items), "conf", confPath)
	err := runCommand(ctx, "aria2c",
		"--conf-path="+confPath,
		"--input-file="+inputPath,
		"--summary-interval=30",
		"--human-readable=true",
	)
	if err != nil {
		res.Failed = len(items)
		return res, fmt.Errorf("aria2c batch failed: %w", err)
	}
	res.Succeeded = len(items)
	return res, nil
}

// YtDlpArgs builds the argument list for one item. subLang is the subtitle
// language, cookiesFile may be empty.
func YtDlpArgs(cfg models.Config, item models.DownloadItem, subLang, cookiesFile string) []string {
	args := []string{
		"--no-warnings",
		"--embed-metadata",
		"--embed-thumbnail",
		"--write-subtitles",
		"--write-auto-subs",
		"--sub-langs", subLang,
		"--retries", "3",
		"--fragment-retries", "3",
		"--output", filepath.Join(cfg.DownloadDir, item.Filename+".%(ext)s"),
		"--format", "best[height<=1080]",
	}
	if cookiesFile != "" {
		args = append(args, "--cookies", cookiesFile)
	}
	return append(args, item.Video.URL)
}

// RunYtDlp downloads items one at a time. Each item gets its own timeout;
// failures are counted and logged but never stop the loop. A missing binary
// is the only hard error.
func RunYtDlp(ctx context.Context, cfg models.Config, items []models.DownloadItem, subLang string) (Result, error) {
	res := Result{Total: len(items)}
	if len(items) == 0 {
		return res, nil
	}
	if _, err := lookPath("yt-dlp"); err != nil {
		return res, fmt.Errorf("yt-dlp: %w (install it with: brew install yt-dlp)", ErrToolMissing)
	}

	store := &storage.Storage{}
	if err := store.EnsureDir(cfg.DownloadDir); err != nil {
		return res, err
	}
	if subLang == "" {
		subLang = cfg.SubLang
	}

	for i, item := range items {
		slog.Info("downloading", "index", item.Index, "title", item.Video.Title, "progress", fmt.Sprintf("%d/%d", i+1, len(items)))

		itemCtx, cancel := context.WithTimeout(ctx, ytdlpItemTimeout)
		err := runCommand(itemCtx, "yt-dlp", YtDlpArgs(cfg, item, subLang, cfg.CookiesFile)...)
		cancel()

		res.Outcomes = append(res.Outcomes, ItemOutcome{Index: item.Index, Err: err})
		if err != nil {
			res.Failed++
			slog.Error("download failed", "index", item.Index, "title", item.Video.Title, "error", err)
		} else {
			res.Succeeded++
		}

		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		if i < len(items)-1 {
			time.Sleep(ytdlpItemDelay)
		}
	}
	return res, nil
}

// Run picks the downloader named by cfg.Tool.
func Run(ctx context.Context, cfg models.Config, items []models.DownloadItem, subLang string) (Result, error) {
	switch cfg.Tool {
	case "yt-dlp":
		return RunYtDlp(ctx, cfg, items, subLang)
	case "", "aria2c":
		return RunAria2(ctx, cfg, items)
	default:
		return Result{}, fmt.Errorf("unknown download tool %q", cfg.Tool)
	}
}
