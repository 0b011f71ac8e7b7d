// Package metrics provides observability hooks for build metrics.
//
// The package follows the Null Object pattern: components receive a Recorder
// through dependency injection and default to NoopRecorder, so metrics can be
// enabled by swapping the implementation without touching call sites.
//
//	recorder := metrics.NewPrometheusRecorder(nil)
//	pipeline := pipeline.New(cfg, pipeline.WithRecorder(recorder))
//
// pagepress is a batch tool without a scrape endpoint; PrometheusRecorder
// output is published via WriteTextfile in the text exposition format for
// the node_exporter textfile collector.
package metrics
