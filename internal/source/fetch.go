package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/local/decknotes/internal/storage"
)

// Resolve turns an input reference into a local file path. Supported forms:
//
//	file://path or a plain filesystem path
//	http(s):// URLs (downloaded to a temp file)
//	s3://bucket/key (downloaded to a temp file via the AWS SDK)
//
// The returned cleanup removes any temp file; it is a no-op for local paths.
func Resolve(ctx context.Context, ref string) (string, func(), error) {
	noop := func() {}

	switch {
	case strings.HasPrefix(ref, "s3://"):
		path, err := downloadS3ToTemp(ctx, ref)
		if err != nil {
			return "", noop, err
		}
		return path, func() { _ = os.Remove(path) }, nil
	case strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://"):
		path, err := downloadHTTPToTemp(ctx, ref)
		if err != nil {
			return "", noop, err
		}
		return path, func() { _ = os.Remove(path) }, nil
	case strings.HasPrefix(ref, "file://"):
		return strings.TrimPrefix(ref, "file://"), noop, nil
	default:
		return ref, noop, nil
	}
}

func downloadHTTPToTemp(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("http %d fetching %s", resp.StatusCode, url)
	}
	f, err := os.CreateTemp("", "deckdl-*.pdf")
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(f, resp.Body); err != nil {
		return "", err
	}
	log.Info().Str("url", url).Str("file", f.Name()).Msg("downloaded deck over http")
	return f.Name(), nil
}

func downloadS3ToTemp(ctx context.Context, s3url string) (string, error) {
	// s3://bucket/key
	path := strings.TrimPrefix(s3url, "s3://")
	slash := strings.Index(path, "/")
	if slash <= 0 {
		return "", fmt.Errorf("invalid s3 url: %s", s3url)
	}
	bucket := path[:slash]
	key := path[slash+1:]

	cli, err := storage.NewS3Client(ctx, bucket)
	if err != nil {
		return "", err
	}

	f, err := os.CreateTemp("", "s3deck-*.pdf")
	if err != nil {
		return "", err
	}
	name := f.Name()
	_ = f.Close()

	if err := cli.DownloadToFile(ctx, key, name); err != nil {
		_ = os.Remove(name)
		return "", err
	}
	log.Info().Str("bucket", bucket).Str("key", key).Str("file", name).Msg("downloaded deck from s3")
	return name, nil
}
