// Package directory defines the lookups the validator depends on.
//
// A lookup has three outcomes. A found entity is returned with StatusFound
// and its record; a missing entity is StatusNotFound with no record; any
// other failure is a non-nil error. Implementations translate their
// transport's "not found" signal (for ARM, an HTTP 404) into StatusNotFound
// so callers never inspect status codes on errors.
//
//	res, err := rgDir.GetResourceGroup(ctx, "rg-prod")
//	switch {
//	case err != nil:
//	    return err
//	case res.Found():
//	    use(res.Record)
//	default:
//	    // not found
//	}
package directory
