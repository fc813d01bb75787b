package fetcher

import (
	"context"
	"log/slog"
	"net/url"

	"github.com/mlowther/vidgrab/models"
	"github.com/mlowther/vidgrab/pkg/discover"
)

// apiProbePaths is the fixed list of likely JSON endpoints, probed against
// the site origin.
var apiProbePaths = []string{
	"/api/v1/videos",
	"/api/videos",
	"/api/library",
	"/api/courses",
	"/api/programs",
	"/api/lessons",
	"/api/content",
	"/api/user/library",
	"/api/v2/courses",
	"/api/v2/programs",
}

// ProbeAPI tries each known endpoint path against the origin of apiBase and
// mines any JSON response for video records. Endpoints that 404, error, or
// return non-JSON are logged and skipped; probing never fails as a whole.
func (f *Fetcher) ProbeAPI(ctx context.Context, apiBase string) ([]models.Video, error) {
	base, err := url.Parse(apiBase)
	if err != nil {
		return nil, err
	}
	origin := base.Scheme + "://" + base.Host

	seen := make(map[string]bool)
	var found []models.Video
	for _, path := range apiProbePaths {
		endpoint := origin + path
		body, err := f.Get(ctx, endpoint)
		if err != nil {
			if ctx.Err() != nil {
				return found, ctx.Err()
			}
			slog.Debug("endpoint probe failed", "endpoint", endpoint, "error", err)
			continue
		}

		videos := discover.WalkJSON(body)
		if len(videos) > 0 {
			slog.Info("endpoint returned video data", "endpoint", endpoint, "videos", len(videos))
		}
		for _, v := range videos {
			if seen[v.URL] {
				continue
			}
			seen[v.URL] = true
			found = append(found, v)
		}
	}
	return found, nil
}
