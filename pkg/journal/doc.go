/*
Package journal records Ferry runs in a local bbolt database.

Every build, deploy, reconcile, and provision run appends one record: when
it started, how long it took, whether it succeeded, and a kind-specific
payload (artifacts built and cache hits for builds, change counts and target
host for deploys). `ferry history` reads the journal back, newest first.

The journal is diagnostic state, not coordination state: deleting the
database loses history and nothing else. It lives under the data directory
(default ~/.ferry) next to nothing the reconciler depends on.

# Usage

	j, err := journal.Open(cfg.DataDir)
	defer j.Close()

	record := journal.Begin(journal.KindBuild)
	err = runBuild()
	record.Artifacts = built
	if appendErr := j.Append(record.Finish(err)); appendErr != nil {
		logger.Warn().Err(appendErr).Msg("failed to journal run")
	}

	recent, err := j.Recent(20)

# See Also

  - cmd/ferry for where records are begun and appended
*/
package journal
