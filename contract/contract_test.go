// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package contract

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"testing"

	ethereum "github.com/luxfi/geth"
	"github.com/luxfi/geth/accounts/abi"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/geth/core/types"
	"github.com/stretchr/testify/require"
)

const transferABI = `[
	{"type":"event","name":"Transfer","anonymous":false,"inputs":[
		{"name":"from","type":"address","indexed":true},
		{"name":"to","type":"address","indexed":true},
		{"name":"amount","type":"uint256","indexed":false}
	]},
	{"type":"function","name":"transfer","stateMutability":"nonpayable","inputs":[
		{"name":"to","type":"address"},
		{"name":"amount","type":"uint256"}
	],"outputs":[{"name":"","type":"bool"}]}
]`

// fakeCaller answers calls by selector with pre-packed return data.
type fakeCaller struct {
	parsed    abi.ABI
	responses map[string][]any
	calls     []ethereum.CallMsg
	err       error
}

func (f *fakeCaller) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	f.calls = append(f.calls, msg)
	if f.err != nil {
		return nil, f.err
	}
	for name, values := range f.responses {
		m := f.parsed.Methods[name]
		if bytes.HasPrefix(msg.Data, m.ID) {
			return m.Outputs.Pack(values...)
		}
	}
	return nil, errors.New("execution reverted")
}

func newTestConsultation(t *testing.T, responses map[string][]any) (*Consultation, *fakeCaller) {
	t.Helper()
	parsed, err := LoadABI(ConsultationABI)
	require.NoError(t, err)
	caller := &fakeCaller{parsed: parsed, responses: responses}
	c, err := NewConsultation(common.HexToAddress(ConsultationAddress), caller)
	require.NoError(t, err)
	return c, caller
}

func TestParseABI(t *testing.T) {
	require := require.New(t)

	sigs, err := ParseABI(ConsultationABI)
	require.NoError(err)
	require.Len(sigs.Functions, 20)
	require.Empty(sigs.Events)
	require.Contains(sigs.Functions, "submitConsultation(uint32,uint32,string)")
	require.Contains(sigs.Functions, "getSystemStats()")
	require.IsIncreasing(sigs.Functions)

	sigs, err = ParseABI(transferABI)
	require.NoError(err)
	require.Equal([]string{"Transfer(address,address,uint256)"}, sigs.Events)

	_, err = ParseABI("{")
	require.Error(err)
}

func TestFunctionSelector(t *testing.T) {
	require := require.New(t)

	parsed, err := LoadABI(transferABI)
	require.NoError(err)

	sel, err := FunctionSelector(parsed, "transfer")
	require.NoError(err)
	require.Equal("0xa9059cbb", sel)

	_, err = FunctionSelector(parsed, "approve")
	require.ErrorIs(err, ErrUnknownFunction)
}

func TestEncodeDecodeFunction(t *testing.T) {
	require := require.New(t)

	parsed, err := LoadABI(transferABI)
	require.NoError(err)

	to := common.HexToAddress("0x02")
	data, err := EncodeFunctionData(parsed, "transfer", to, big.NewInt(5))
	require.NoError(err)
	require.Len(data, 4+2*32)
	require.Equal(parsed.Methods["transfer"].ID, data[:4])

	_, err = EncodeFunctionData(parsed, "approve")
	require.ErrorIs(err, ErrUnknownFunction)
	_, err = EncodeFunctionData(parsed, "transfer", "not an address", big.NewInt(5))
	require.Error(err)

	out, err := parsed.Methods["transfer"].Outputs.Pack(true)
	require.NoError(err)
	values, err := DecodeFunctionResult(parsed, "transfer", out)
	require.NoError(err)
	require.Equal([]any{true}, values)

	_, err = DecodeFunctionResult(parsed, "approve", out)
	require.ErrorIs(err, ErrUnknownFunction)
}

func TestParseEventLogs(t *testing.T) {
	require := require.New(t)

	parsed, err := LoadABI(transferABI)
	require.NoError(err)
	event := parsed.Events["Transfer"]

	from := common.HexToAddress("0x0a")
	to := common.HexToAddress("0x0b")
	data, err := event.Inputs.NonIndexed().Pack(big.NewInt(99))
	require.NoError(err)

	logs := []types.Log{
		{
			Topics: []common.Hash{event.ID, common.BytesToHash(from.Bytes()), common.BytesToHash(to.Bytes())},
			Data:   data,
		},
		{Topics: []common.Hash{common.Keccak256Hash([]byte("Other()"))}},
		{},
	}
	decoded := ParseEventLogs(parsed, logs)
	require.Len(decoded, 1)
	require.Equal("Transfer", decoded[0].EventName)
	require.Equal(from, decoded[0].Args["from"])
	require.Equal(to, decoded[0].Args["to"])
	require.Equal(big.NewInt(99), decoded[0].Args["amount"])
}

func TestConsultationCalldata(t *testing.T) {
	require := require.New(t)

	c, _ := newTestConsultation(t, nil)
	require.Equal(common.HexToAddress(ConsultationAddress), c.Address())

	data, err := c.SubmitConsultation(7, 3, "0xdeadbeef")
	require.NoError(err)
	values, err := c.ABI().Methods["submitConsultation"].Inputs.Unpack(data[4:])
	require.NoError(err)
	require.Equal([]any{uint32(7), uint32(3), "0xdeadbeef"}, values)

	_, err = c.SubmitConsultation(7, 9, "q")
	require.ErrorIs(err, ErrUnknownCategory)
	_, err = c.RegisterLawyer(0)
	require.ErrorIs(err, ErrUnknownCategory)

	builders := []func() ([]byte, error){
		func() ([]byte, error) { return c.RegisterLawyer(2) },
		func() ([]byte, error) { return c.AssignConsultation(big.NewInt(1), big.NewInt(2)) },
		func() ([]byte, error) { return c.ProvideResponse(big.NewInt(1), "0x01") },
		func() ([]byte, error) { return c.VerifyLawyer(big.NewInt(1)) },
		func() ([]byte, error) { return c.UpdateLawyerRating(big.NewInt(1), 5) },
		func() ([]byte, error) { return c.DeactivateLawyer(big.NewInt(1)) },
		func() ([]byte, error) { return c.WithdrawFees(big.NewInt(1000)) },
	}
	for _, build := range builders {
		data, err := build()
		require.NoError(err)
		parsed := c.ABI()
		_, err = parsed.MethodById(data[:4])
		require.NoError(err)
	}
}

func TestConsultationReads(t *testing.T) {
	require := require.New(t)

	admin := common.HexToAddress("0xad")
	c, caller := newTestConsultation(t, map[string][]any{
		"getSystemStats":         {big.NewInt(10), big.NewInt(4), big.NewInt(3)},
		"getConsultationDetails": {"0xq", "0xr", big.NewInt(1700000000), big.NewInt(1e15), true, false},
		"getLawyerProfile":       {big.NewInt(12), true, true},
		"getClientStats":         {big.NewInt(2), big.NewInt(2e15)},
		"admin":                  {admin},
		"consultationCounter":    {big.NewInt(10)},
		"isRegisteredLawyer":     {true},
		"getLegalCategory":       {"Tax Law"},
	})
	ctx := context.Background()

	stats, err := c.SystemStats(ctx)
	require.NoError(err)
	require.Equal(&SystemStats{
		TotalConsultations: big.NewInt(10),
		TotalLawyers:       big.NewInt(4),
		VerifiedLawyers:    big.NewInt(3),
	}, stats)
	require.Equal(common.HexToAddress(ConsultationAddress), *caller.calls[0].To)

	details, err := c.ConsultationDetails(ctx, big.NewInt(1))
	require.NoError(err)
	require.Equal("0xq", details.EncryptedQuestion)
	require.True(details.IsResolved)
	require.False(details.IsPaid)

	profile, err := c.LawyerProfile(ctx, big.NewInt(1))
	require.NoError(err)
	require.Equal(big.NewInt(12), profile.ConsultationCount)

	clientStats, err := c.ClientStats(ctx, admin)
	require.NoError(err)
	require.Equal(big.NewInt(2), clientStats.TotalConsultations)

	got, err := c.Admin(ctx)
	require.NoError(err)
	require.Equal(admin, got)

	n, err := c.ConsultationCounter(ctx)
	require.NoError(err)
	require.Equal(big.NewInt(10), n)

	registered, err := c.IsRegisteredLawyer(ctx, admin)
	require.NoError(err)
	require.True(registered)

	name, err := c.LegalCategory(ctx, big.NewInt(8))
	require.NoError(err)
	require.Equal("Tax Law", name)

	_, err = c.LawyerCounter(ctx)
	require.ErrorContains(err, "execution reverted")
}

func TestConsultationWithoutCaller(t *testing.T) {
	c, err := NewConsultation(common.HexToAddress(ConsultationAddress), nil)
	require.NoError(t, err)
	_, err = c.SystemStats(context.Background())
	require.ErrorContains(t, err, "no contract caller")
}

func TestCategoryName(t *testing.T) {
	require := require.New(t)

	name, ok := CategoryName(1)
	require.True(ok)
	require.Equal("Civil Law", name)
	_, ok = CategoryName(9)
	require.False(ok)
	require.Len(LegalCategories, 8)
}
