package validation

// MaxBodySize is the default request body cap (64 KB). A registration with a
// handful of dependents is well under 4 KB.
const MaxBodySize = 64 * 1024
