// Package mocks provides centralized mock implementations for testing.
//
// Two styles are used. Stores whose call sequence matters in a test are
// mocked with testify/mock (TestifyMock* types, configured with On/Return).
// Everything else uses function fields plus default response values:
//
//	labels := &mocks.MockLabelStore{
//	    CreateFn: func(ctx context.Context, l *domain.Label) error {
//	        return store.ErrLabelExists
//	    },
//	}
//
// Unset function fields fall back to the default response values, and call
// arguments are recorded for later assertions.
package mocks
