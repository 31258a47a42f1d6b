// Package feed polls Prometheus text-exposition endpoints and offers the
// extracted samples to the cache as candidate observations. Each configured
// feed runs its own poll loop with its own HTTP client and timeout; metric
// families are summed across label sets and mapped onto cache series by name,
// with an optional scale factor applied before admission.
//
// Admission is the cache's business: a rejected sample lands in the error log
// and the feed merely logs it at debug level.
package feed
