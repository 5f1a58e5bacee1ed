package value

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTruthy(t *testing.T) {
	require.True(t, NumberValue(0).Truthy())
	require.True(t, StringValue("").Truthy())
	require.True(t, BoolValue(true).Truthy())
	require.False(t, BoolValue(false).Truthy())
	require.False(t, NullValue.Truthy())
}

func TestString_NumberDropsTrailingZero(t *testing.T) {
	require.Equal(t, "3", NumberValue(3).String())
	require.Equal(t, "3.5", NumberValue(3.5).String())
	require.Equal(t, "-2", NumberValue(-2).String())
}

func TestEqual_SameKindComparesByContent(t *testing.T) {
	require.True(t, Equal(NumberValue(1), NumberValue(1)))
	require.False(t, Equal(NumberValue(1), NumberValue(2)))
	require.True(t, Equal(StringValue("a"), StringValue("a")))
	require.True(t, Equal(NullValue, NullValue))
}

func TestEqual_DifferentKindsAreNeverEqual(t *testing.T) {
	require.False(t, Equal(NumberValue(0), StringValue("0")))
	require.False(t, Equal(NumberValue(0), BoolValue(false)))
	require.False(t, Equal(NullValue, BoolValue(false)))
}

func TestCompare_NumbersAreOrdered(t *testing.T) {
	c, err := Compare(NumberValue(1), NumberValue(2))
	require.NoError(t, err)
	require.Equal(t, -1, c)

	c, err = Compare(NumberValue(2), NumberValue(1))
	require.NoError(t, err)
	require.Equal(t, 1, c)
}

func TestCompare_NonNumericIsRuntimeError(t *testing.T) {
	_, err := Compare(NumberValue(1), StringValue("1"))
	require.Error(t, err)

	_, err = Compare(StringValue("b"), StringValue("a"))
	require.Error(t, err)

	_, err = Compare(BoolValue(true), BoolValue(false))
	require.Error(t, err)
}

func TestHostValue_RoundTrips(t *testing.T) {
	type widget struct{ ID int }
	w := &widget{ID: 7}
	v := HostValue(w)
	require.Equal(t, Host, v.Kind())
	got, ok := v.AsHost().(*widget)
	require.True(t, ok)
	require.Equal(t, 7, got.ID)
}
