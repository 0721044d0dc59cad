package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/geoconv/internal/geojson"
)

const previewPage = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>geoconv preview</title>
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
  <script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
  <style>html, body, #map { height: 100%; margin: 0; }</style>
</head>
<body>
  <div id="map"></div>
  <script>
    var map = L.map('map').setView([0, 0], 2);
    L.tileLayer('https://tile.openstreetmap.org/{z}/{x}/{y}.png', {
      attribution: '&copy; OpenStreetMap contributors'
    }).addTo(map);
    fetch('/data.geojson')
      .then(function (r) { return r.json(); })
      .then(function (data) {
        var layer = L.geoJSON(data, {
          onEachFeature: function (feature, l) {
            if (feature.properties) {
              var rows = Object.keys(feature.properties).map(function (k) {
                return k + ': ' + feature.properties[k];
              });
              if (rows.length > 0) { l.bindPopup(rows.join('<br>')); }
            }
          }
        }).addTo(map);
        var bounds = layer.getBounds();
        if (bounds.isValid()) { map.fitBounds(bounds, { maxZoom: 12 }); }
      });
  </script>
</body>
</html>
`

var serveCmd = &cobra.Command{
	Use:   "serve <file>",
	Short: "Preview a GeoJSON file on a local map",
	Long: `Serves a converted GeoJSON file with a browser map preview. The file
is validated on startup and re-read on each request so edits show up
on refresh.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		path := args[0]
		if err := validateGeoJSONFile(path); err != nil {
			return err
		}

		log := zap.L().With(zap.String("command", "serve"))

		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{http.MethodGet},
		}))

		r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			fmt.Fprint(w, previewPage)
		})
		r.Get("/data.geojson", func(w http.ResponseWriter, _ *http.Request) {
			content, err := os.ReadFile(path)
			if err != nil {
				log.Error("read geojson", zap.Error(err))
				http.Error(w, "read failed", http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "application/geo+json")
			_, _ = w.Write(content)
		})

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Serve.Port),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.ListenAndServe()
		}()

		log.Info("serving preview",
			zap.String("file", path),
			zap.Int("port", cfg.Serve.Port),
		)

		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return eris.Wrap(err, "serve: shutdown")
			}
			return nil
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return eris.Wrap(err, "serve")
		}
	},
}

func validateGeoJSONFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return eris.Wrapf(err, "serve: read %s", path)
	}
	if _, err := geojson.Unmarshal(content); err != nil {
		return eris.Wrapf(err, "serve: validate %s", path)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
