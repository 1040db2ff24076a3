package gcampus

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/desklab/gcampus-go/pkg/gcampus/formula"
	"github.com/desklab/gcampus-go/pkg/gcampus/models"
)

func TestRegistryEvaluate(t *testing.T) {
	r := NewRegistry()
	_, err := r.Register(models.FormulaSpec{Key: "p1", Expression: "od*2"})
	require.NoError(t, err)

	got, err := r.Evaluate("p1", 0.8)
	require.NoError(t, err)
	assert.Equal(t, 1.6, got)
	assert.Equal(t, "1.60", FormatValue(got))
}

func TestRegistryNotInitialized(t *testing.T) {
	r := NewRegistry()
	_, err := r.Register(models.FormulaSpec{Key: "p1", Expression: "od*2"})
	require.NoError(t, err)

	_, err = r.Evaluate("p2", 1)
	var nie *NotInitializedError
	require.True(t, errors.As(err, &nie))
	assert.Equal(t, "p2", nie.Key)
	assert.Contains(t, err.Error(), "p2")
}

func TestRegistryMalformedLeavesPrevious(t *testing.T) {
	r := NewRegistry()
	_, err := r.Register(models.FormulaSpec{Key: "p1", Expression: "od+1"})
	require.NoError(t, err)

	_, err = r.Register(models.FormulaSpec{Key: "p1", Expression: "od+*"})
	var mfe *formula.MalformedFormulaError
	require.ErrorAs(t, err, &mfe)

	got, err := r.Evaluate("p1", 1)
	require.NoError(t, err)
	assert.Equal(t, 2.0, got)
}

func TestRegistryIndependentKeys(t *testing.T) {
	r := NewRegistry()
	_, err := r.Register(models.FormulaSpec{Key: "b", Expression: "od*10"})
	require.NoError(t, err)
	_, err = r.Register(models.FormulaSpec{Key: "a", Expression: "od/10"})
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, r.Keys())
	a, _ := r.Evaluate("a", 1)
	b, _ := r.Evaluate("b", 1)
	assert.Equal(t, 0.1, a)
	assert.Equal(t, 10.0, b)
}

func TestRegistryConcurrentUse(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Register(models.FormulaSpec{Key: "p", Expression: "od*3"})
			assert.NoError(t, err)
			v, err := r.Evaluate("p", 0.5)
			assert.NoError(t, err)
			assert.Equal(t, 1.5, v)
		}()
	}
	wg.Wait()
}
