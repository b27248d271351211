package prometheusadapter

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-openfeature/client"
	"github.com/goliatone/go-openfeature/feature"
	"github.com/goliatone/go-openfeature/logger"
	"github.com/goliatone/go-openfeature/provider"
)

func TestHookCountsEvaluations(t *testing.T) {
	reg := prometheus.NewRegistry()
	hook, err := New(reg)
	require.NoError(t, err)

	p := provider.NewStatic(provider.WithBool(feature.Resolution[bool]{Value: true, Reason: feature.ReasonTargetingMatch}))
	c := client.New(client.WithProvider(p), client.WithHooks(hook), client.WithLogger(logger.Nop()))
	ctx := context.Background()

	c.BoolValue(ctx, "checkout.v2", false)
	c.BoolValue(ctx, "checkout.v2", false)
	c.StringValue(ctx, "banner.text", "x")

	assert.Equal(t, 2.0, testutil.ToFloat64(hook.Evaluations().WithLabelValues("checkout.v2", string(feature.ReasonTargetingMatch))))
	assert.Equal(t, 1.0, testutil.ToFloat64(hook.Evaluations().WithLabelValues("banner.text", string(feature.ReasonError))))
	assert.Equal(t, 1.0, testutil.ToFloat64(hook.Errors().WithLabelValues("banner.text", string(feature.ErrorFlagNotFound))))
	assert.Equal(t, 0.0, testutil.ToFloat64(hook.Errors().WithLabelValues("checkout.v2", string(feature.ErrorFlagNotFound))))
}

func TestHookClassifiesHookErrors(t *testing.T) {
	reg := prometheus.NewRegistry()
	hook, err := New(reg, WithNamespace("app"))
	require.NoError(t, err)

	failing := feature.HookFuncs{
		Before: func(context.Context, *feature.HookContext, feature.HookHints) error {
			return assert.AnError
		},
	}
	c := client.New(client.WithProvider(provider.NewNoop()), client.WithHooks(hook, failing), client.WithLogger(logger.Nop()))
	c.BoolValue(context.Background(), "flag", true)

	assert.Equal(t, 1.0, testutil.ToFloat64(hook.Errors().WithLabelValues("flag", string(feature.ErrorGeneral))))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, family := range families {
		names = append(names, family.GetName())
	}
	assert.Contains(t, names, "app_"+DefaultErrorsName)
}

func TestNewRejectsDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)
	_, err = New(reg)
	assert.Error(t, err)
}
