package serializer

// StdoutURI is the special URI indicating output should be written to stdout.
const StdoutURI = "-"
