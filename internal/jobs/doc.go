// Package jobs implements the two block consumers of a session.
//
// The log job renders a block as one summary line, "[<session>] bulk: a, b, c",
// and writes it to the logging sink. The file job writes every statement value
// on its own line into a new artifact named bulk_<unixnanos>_<tid>.log.
//
// Each job drives the statements through a domain.Executor: [SummaryExecutor]
// and [ArtifactExecutor] are the two variants, and a fresh one is used per block.
package jobs
