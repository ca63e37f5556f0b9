// Package feed talks to the remote job-listing feed.
//
// It fetches the feed over HTTP (gzip aware), keeps a short-lived
// compressed copy of the body in an in-memory freecache, and normalizes the
// records into models.JobSnapshot values with stable ids (StableJobID) and
// display-ready salary strings (FormatSalary).
//
// A transport or HTTP status failure is returned as an error wrapping
// common.ErrFeedUnavailable so callers can offer a retry. A body that does
// not contain a jobs array is not an error for callers of Fetch: it is
// logged and yields an empty list.
package feed
