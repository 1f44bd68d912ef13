//go:build !protogen

package schedule

// NewGRPCProvider is a no-op without generated protobuf code; the caller
// falls back to direct table reads.
func NewGRPCProvider(_ string) (Provider, error) {
	return nil, nil
}
