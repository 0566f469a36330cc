package api

// Page is one page of a list endpoint.
type Page[T any] struct {
	Items []T
	Count int
	Total int64
	Page  int
	Limit int
}

// DecodePage decodes a list envelope.
func DecodePage[T any](env *Envelope) (*Page[T], error) {
	items, err := Decode[[]T](env)
	if err != nil {
		return nil, err
	}
	return &Page[T]{
		Items: items,
		Count: env.Count,
		Total: env.Total,
		Page:  env.Page,
		Limit: env.Limit,
	}, nil
}
