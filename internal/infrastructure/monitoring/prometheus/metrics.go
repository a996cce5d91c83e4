package prometheus

// EngineMetrics holds all metrics observed by the discovery and scoring
// pipelines.  Label "workspace_id" is deliberately absent: workspace counts
// are unbounded and would explode cardinality; runs are instead labelled by
// outcome and mode.
type EngineMetrics struct {
	// Discovery pipeline
	DiscoveryRunsTotal    CounterVec // labels: mode, status
	DiscoveryRunDuration  HistogramVec
	DiscoveryDealsScanned HistogramVec
	PersonasDiscovered    HistogramVec

	// Scoring pipeline
	ScoringRunsTotal   CounterVec // labels: status
	ScoringRunDuration HistogramVec
	ScoresWritten      CounterVec // labels: entity_type
	DegradedRunsTotal  CounterVec // scoring runs without custom-field weights

	// Worker
	TriggersConsumed CounterVec // labels: topic, status
}

// Run-duration buckets sized for batch pipelines (seconds-to-minutes).
var runDurationBuckets = []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600}

var corpusSizeBuckets = []float64{10, 30, 50, 100, 250, 500, 1000, 5000}

// NewEngineMetrics registers the engine metric set against the collector.
func NewEngineMetrics(collector MetricsCollector) *EngineMetrics {
	m := &EngineMetrics{}

	m.DiscoveryRunsTotal = collector.RegisterCounter("discovery_runs_total", "Discovery runs by mode and status", "mode", "status")
	m.DiscoveryRunDuration = collector.RegisterHistogram("discovery_run_duration_seconds", "Discovery run duration", runDurationBuckets, "mode")
	m.DiscoveryDealsScanned = collector.RegisterHistogram("discovery_deals_scanned", "Closed deals scanned per discovery run", corpusSizeBuckets, "mode")
	m.PersonasDiscovered = collector.RegisterHistogram("discovery_personas_found", "Significant personas per discovery run", []float64{0, 1, 2, 5, 10, 20, 50}, "mode")

	m.ScoringRunsTotal = collector.RegisterCounter("scoring_runs_total", "Scoring runs by status", "status")
	m.ScoringRunDuration = collector.RegisterHistogram("scoring_run_duration_seconds", "Scoring run duration", runDurationBuckets, "status")
	m.ScoresWritten = collector.RegisterCounter("scores_written_total", "Lead scores upserted", "entity_type")
	m.DegradedRunsTotal = collector.RegisterCounter("degraded_runs_total", "Runs executed without custom-field weights")

	m.TriggersConsumed = collector.RegisterCounter("triggers_consumed_total", "Run-trigger messages consumed", "topic", "status")

	return m
}

// NopEngineMetrics returns an EngineMetrics whose observations are discarded.
// Used by the CLI path and unit tests where a registry would add noise.
func NopEngineMetrics() *EngineMetrics {
	return &EngineMetrics{
		DiscoveryRunsTotal:    nopCounterVec{},
		DiscoveryRunDuration:  nopHistogramVec{},
		DiscoveryDealsScanned: nopHistogramVec{},
		PersonasDiscovered:    nopHistogramVec{},
		ScoringRunsTotal:      nopCounterVec{},
		ScoringRunDuration:    nopHistogramVec{},
		ScoresWritten:         nopCounterVec{},
		DegradedRunsTotal:     nopCounterVec{},
		TriggersConsumed:      nopCounterVec{},
	}
}

type nopCounter struct{}

func (nopCounter) Inc()        {}
func (nopCounter) Add(float64) {}

type nopCounterVec struct{}

func (nopCounterVec) WithLabelValues(...string) Counter { return nopCounter{} }

type nopHistogram struct{}

func (nopHistogram) Observe(float64) {}

type nopHistogramVec struct{}

func (nopHistogramVec) WithLabelValues(...string) Histogram { return nopHistogram{} }

//Personal.AI order the ending
