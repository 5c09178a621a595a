package repository

import "context"

// Unavailable is the Store used when no connection string is configured.
// Every operation fails with ErrNotConfigured.
type Unavailable struct{}

func (Unavailable) Name() string { return "" }

func (Unavailable) Insert(context.Context, string, any) (ID, error) {
	return ID{}, ErrNotConfigured
}

func (Unavailable) Find(context.Context, string, Filter, int, func(ID, Decoder) error) error {
	return ErrNotConfigured
}

func (Unavailable) CollectionNames(context.Context) ([]string, error) {
	return nil, ErrNotConfigured
}

func (Unavailable) Ping(context.Context) error { return ErrNotConfigured }

func (Unavailable) Close(context.Context) error { return nil }
