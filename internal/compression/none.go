package compression

// NoneCompressor stores payloads as they are.
type NoneCompressor struct{}

func (c *NoneCompressor) Name() string {
	return "none"
}

func (c *NoneCompressor) Compress(data []byte) ([]byte, error) {
	return data, nil
}

func (c *NoneCompressor) Decompress(data []byte) ([]byte, error) {
	return data, nil
}

func init() {
	RegisterCompressor("none", &NoneCompressor{})
}
