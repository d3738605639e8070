// Package mocks provides test doubles for the fetcher package.
package mocks

import (
	"context"
	"io"

	fetcher "github.com/sells-group/inforoute-cli/internal/fetcher"
	mock "github.com/stretchr/testify/mock"
)

// MockFetcher is a mock type for the Fetcher interface.
type MockFetcher struct {
	mock.Mock
}

// Download provides a mock function with given fields: ctx, url, opts
func (_m *MockFetcher) Download(ctx context.Context, url string, opts ...fetcher.RequestOption) (io.ReadCloser, error) {
	_va := make([]interface{}, len(opts))
	for _i := range opts {
		_va[_i] = opts[_i]
	}
	var _ca []interface{}
	_ca = append(_ca, ctx, url)
	_ca = append(_ca, _va...)
	ret := _m.Called(_ca...)

	if len(ret) == 0 {
		panic("no return value specified for Download")
	}

	var r0 io.ReadCloser
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string, ...fetcher.RequestOption) (io.ReadCloser, error)); ok {
		return rf(ctx, url, opts...)
	}
	if rf, ok := ret.Get(0).(func(context.Context, string, ...fetcher.RequestOption) io.ReadCloser); ok {
		r0 = rf(ctx, url, opts...)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(io.ReadCloser)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, string, ...fetcher.RequestOption) error); ok {
		r1 = rf(ctx, url, opts...)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewMockFetcher creates a new instance of MockFetcher. It also registers a
// testing interface on the mock and a cleanup function to assert the mocks
// expectations.
func NewMockFetcher(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockFetcher {
	m := &MockFetcher{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
