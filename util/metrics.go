package util

// MetricsBucketsMicroSeconds are the histogram buckets for single store calls, 100µs to ~3.3s.
var MetricsBucketsMicroSeconds = []float64{
	100e-6, 200e-6, 400e-6, 800e-6, 1.6e-3, 3.2e-3, 6.4e-3, 12.8e-3,
	25.6e-3, 51.2e-3, 102.4e-3, 204.8e-3, 409.6e-3, 819.2e-3, 1.6384, 3.2768,
}

// MetricsBucketsMilliSeconds are the histogram buckets for whole validations, 0.5ms to ~65s.
var MetricsBucketsMilliSeconds = []float64{
	0.5e-3, 1e-3, 2e-3, 4e-3, 8e-3, 16e-3, 32e-3, 64e-3, 128e-3,
	256e-3, 512e-3, 1.024, 2.048, 4.096, 8.192, 16.384, 32.768, 65.536,
}

// MetricsBucketsCount are the histogram buckets for item counts, 1 to ~4M.
var MetricsBucketsCount = []float64{
	1, 4, 16, 64, 256, 1024, 4096, 16384, 65536, 262144, 1048576, 4194304,
}
