package timeseries

import (
	"context"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/rs/zerolog"

	"dam-inspection-system/internal/domain"
)

const measurement = "dam_stability"

// InfluxConfig параметри підключення до InfluxDB
type InfluxConfig struct {
	URL    string
	Token  string
	Org    string
	Bucket string
	Site   string
}

// GaugeWriter пише знімки стану стійкості в InfluxDB. Використовує
// неблокуючий WriteAPI: точки буферизуються і відправляються пакетами.
type GaugeWriter struct {
	client   influxdb2.Client
	writeAPI api.WriteAPI
	site     string
	log      zerolog.Logger
}

// NewGaugeWriter створює новий екземпляр GaugeWriter
func NewGaugeWriter(cfg InfluxConfig, log zerolog.Logger) *GaugeWriter {
	client := influxdb2.NewClient(cfg.URL, cfg.Token)
	return &GaugeWriter{
		client:   client,
		writeAPI: client.WriteAPI(cfg.Org, cfg.Bucket),
		site:     cfg.Site,
		log:      log.With().Str("component", "influx_gauge_writer").Logger(),
	}
}

// ObserveGauge ставить знімок у буфер запису
func (w *GaugeWriter) ObserveGauge(snapshot domain.DamStabilityGauge) {
	w.writeAPI.WritePoint(gaugePoint(snapshot, w.site))
}

// Run журналює помилки асинхронного запису до скасування ctx
func (w *GaugeWriter) Run(ctx context.Context) error {
	errCh := w.writeAPI.Errors()
	for {
		select {
		case err := <-errCh:
			w.log.Error().Err(err).Msg("failed to write gauge snapshot")
		case <-ctx.Done():
			return nil
		}
	}
}

// Close дописує буфер і закриває клієнт
func (w *GaugeWriter) Close() {
	w.writeAPI.Flush()
	w.client.Close()
}

func gaugePoint(snapshot domain.DamStabilityGauge, site string) *write.Point {
	p := influxdb2.NewPointWithMeasurement(measurement).
		AddTag("status", snapshot.Status.String()).
		AddTag("seismic_activity", snapshot.SeismicActivity.String()).
		AddField("safety_factor", snapshot.SafetyFactor).
		AddField("water_level", snapshot.WaterLevel).
		AddField("uplift_pressure", snapshot.UpliftPressure).
		AddField("inspection_multiplier", snapshot.InspectionMultiplier).
		SetTime(snapshot.LastUpdate)
	if site != "" {
		p.AddTag("site", site)
	}
	return p
}
