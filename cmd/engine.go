package main

import (
	"time"

	"github.com/sells-group/geoconv/internal/convert"
	"github.com/sells-group/geoconv/internal/fetcher"
	"github.com/sells-group/geoconv/internal/topo"
	"github.com/sells-group/geoconv/pkg/ogre"
)

// newEngine wires the conversion engine from config.
func newEngine() *convert.Engine {
	fetch := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:  cfg.Fetch.UserAgent,
		Timeout:    time.Duration(cfg.Fetch.TimeoutSecs) * time.Second,
		MaxRetries: cfg.Fetch.MaxRetries,
		TempDir:    cfg.Fetch.TempDir,
	})
	web := ogre.New(ogre.WithBaseURL(cfg.Ogre.BaseURL))
	tc := topo.NewExecConverter(cfg.Topo.Geo2TopoPath, cfg.Topo.Topo2GeoPath)
	return convert.New(fetch, web, tc)
}
