/*
Package filesystem provides filesystem operations that retry NFS stale file
handle errors.

Photo masters often live on network mounts. A stat or open that fails with
ESTALE (errno 116) is retried with exponential backoff; every other error
is returned immediately.

# Usage

	info, err := filesystem.StatWithRetry(p.Master, filesystem.DefaultRetryConfig())

	f, err := filesystem.OpenWithRetry(p.Master, filesystem.DefaultRetryConfig())
	if err != nil {
	    return err
	}
	defer f.Close()

# Metrics

Retries are counted in photo_grid_filesystem_retries_total, labelled by
operation ("stat", "open") and result ("success", "failure").
*/
package filesystem
