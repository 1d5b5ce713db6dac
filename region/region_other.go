//go:build !linux

package region

func Map[T Scalar](n int) (*Region[T], error) {
	if _, err := byteSize[T](n); err != nil {
		return nil, err
	}
	return nil, ErrUnsupported
}

func (r *Region[T]) Release() error {
	return ErrUnsupported
}
