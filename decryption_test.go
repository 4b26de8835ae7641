// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package fhevm

import (
	"context"
	"math/big"
	"testing"

	"github.com/luxfi/crypto"
	"github.com/luxfi/geth/common"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/fhevm/crypto/fhe"
	"github.com/luxfi/fhevm/gateway"
	"github.com/luxfi/fhevm/wallet"
)

// recordingGateway counts the requests it forwards to a local runtime.
type recordingGateway struct {
	gateway.Decrypter
	userCalls   int
	publicCalls int
}

func (g *recordingGateway) UserDecrypt(ctx context.Context, req *gateway.UserDecryptRequest) (*big.Int, error) {
	g.userCalls++
	return g.Decrypter.UserDecrypt(ctx, req)
}

func (g *recordingGateway) PublicDecrypt(ctx context.Context, req *gateway.PublicDecryptRequest) (*big.Int, error) {
	g.publicCalls++
	return g.Decrypter.PublicDecrypt(ctx, req)
}

type decryptFixture struct {
	client  *Client
	runtime *fhe.LocalRuntime
	gateway *recordingGateway
	wallet  *wallet.KeyWallet
}

func newDecryptFixture(t *testing.T) *decryptFixture {
	t.Helper()
	require := require.New(t)

	rt, err := fhe.NewLocalRuntime(testConfig.params())
	require.NoError(err)
	gw := &recordingGateway{Decrypter: rt}

	c, err := NewClient(testConfig, func(context.Context, fhe.Params) (fhe.Runtime, error) {
		return rt, nil
	}, WithGateway(gw))
	require.NoError(err)
	require.NoError(c.Init(context.Background()))

	key, err := crypto.GenerateKey()
	require.NoError(err)
	return &decryptFixture{
		client:  c,
		runtime: rt,
		gateway: gw,
		wallet:  wallet.NewKeyWallet(key, testConfig.ChainID, nil),
	}
}

func (f *decryptFixture) encrypt(t *testing.T, values ...Value) []common.Hash {
	t.Helper()
	user, err := f.wallet.Address(context.Background())
	require.NoError(t, err)
	res, err := f.client.EncryptValues(context.Background(), testContract, user, values...)
	require.NoError(t, err)
	return res.Handles
}

func TestUserDecryptRoundTrip(t *testing.T) {
	require := require.New(t)

	f := newDecryptFixture(t)
	handles := f.encrypt(t, Uint32(123456), Bool(true), Uint64(1<<40))

	v, err := f.client.UserDecrypt(context.Background(), DecryptionRequest{
		ContractAddress: testContract,
		Handle:          handles[0],
		Signer:          f.wallet,
	})
	require.NoError(err)
	require.Equal(int64(123456), v.Int64())

	b, err := f.client.DecryptBool(context.Background(), DecryptionRequest{
		ContractAddress: testContract,
		Handle:          handles[1],
		Signer:          f.wallet,
	})
	require.NoError(err)
	require.True(b)

	n, err := f.client.DecryptUint64(context.Background(), DecryptionRequest{
		ContractAddress: testContract,
		Handle:          handles[2],
		Signer:          f.wallet,
	})
	require.NoError(err)
	require.Equal(uint64(1<<40), n)
}

func TestUserDecryptOtherAccountDenied(t *testing.T) {
	require := require.New(t)

	f := newDecryptFixture(t)
	handles := f.encrypt(t, Uint8(9))

	otherKey, err := crypto.GenerateKey()
	require.NoError(err)
	other := wallet.NewKeyWallet(otherKey, testConfig.ChainID, nil)

	_, err = f.client.UserDecrypt(context.Background(), DecryptionRequest{
		ContractAddress: testContract,
		Handle:          handles[0],
		Signer:          other,
	})
	require.ErrorIs(err, ErrDecryptionFailed)
	require.ErrorIs(err, gateway.ErrNotAllowed)
}

func TestUserDecryptSignatureFailure(t *testing.T) {
	require := require.New(t)

	f := newDecryptFixture(t)
	handles := f.encrypt(t, Uint8(9))
	f.wallet.Disconnect()

	_, err := f.client.UserDecrypt(context.Background(), DecryptionRequest{
		ContractAddress: testContract,
		Handle:          handles[0],
		Signer:          f.wallet,
	})
	require.ErrorIs(err, ErrNetworkOrSignature)
	require.ErrorIs(err, wallet.ErrDisconnected)
	require.Zero(f.gateway.userCalls)
}

func TestUserDecryptRequiresSigner(t *testing.T) {
	f := newDecryptFixture(t)
	_, err := f.client.UserDecrypt(context.Background(), DecryptionRequest{
		ContractAddress: testContract,
	})
	require.ErrorIs(t, err, ErrValidation)
}

func TestBatchUserDecryptAbortsOnFailure(t *testing.T) {
	require := require.New(t)

	f := newDecryptFixture(t)
	handles := f.encrypt(t, Uint8(1), Uint8(2), Uint8(3))
	handles[1] = common.Hash{0xde, 0xad}

	reqs := make([]DecryptionRequest, len(handles))
	for i, h := range handles {
		reqs[i] = DecryptionRequest{
			ContractAddress: testContract,
			Handle:          h,
			Signer:          f.wallet,
		}
	}

	values, err := f.client.BatchUserDecrypt(context.Background(), reqs)
	require.ErrorIs(err, ErrDecryptionFailed)
	require.ErrorIs(err, fhe.ErrInvalidCiphertext)
	require.ErrorContains(err, "request 1")
	require.Nil(values)
	require.Equal(2, f.gateway.userCalls)
}

func TestBatchUserDecrypt(t *testing.T) {
	require := require.New(t)

	f := newDecryptFixture(t)
	handles := f.encrypt(t, Uint8(1), Uint16(2), Uint32(3))
	reqs := make([]DecryptionRequest, len(handles))
	for i, h := range handles {
		reqs[i] = DecryptionRequest{
			ContractAddress: testContract,
			Handle:          h,
			Signer:          f.wallet,
		}
	}

	values, err := f.client.BatchUserDecrypt(context.Background(), reqs)
	require.NoError(err)
	require.Len(values, 3)
	for i, v := range values {
		require.Equal(int64(i+1), v.Int64())
	}
}

func TestPublicDecrypt(t *testing.T) {
	require := require.New(t)

	f := newDecryptFixture(t)
	handles := f.encrypt(t, Uint16(500), Uint16(600))

	_, err := f.client.PublicDecrypt(context.Background(), PublicDecryptionRequest{
		ContractAddress: testContract,
		Handle:          handles[0],
	})
	require.ErrorIs(err, ErrDecryptionFailed)

	require.NoError(f.runtime.AllowPublicDecryption(handles[0]))
	require.NoError(f.runtime.AllowPublicDecryption(handles[1]))
	values, err := f.client.BatchPublicDecrypt(context.Background(), []PublicDecryptionRequest{
		{ContractAddress: testContract, Handle: handles[0]},
		{ContractAddress: testContract, Handle: handles[1]},
	})
	require.NoError(err)
	require.Equal([]*big.Int{big.NewInt(500), big.NewInt(600)}, values)
	require.Equal(3, f.gateway.publicCalls)
}

func TestDecryptWithoutGateway(t *testing.T) {
	require := require.New(t)

	c, _ := newReadyClient(t)
	key, err := crypto.GenerateKey()
	require.NoError(err)

	_, err = c.UserDecrypt(context.Background(), DecryptionRequest{
		ContractAddress: testContract,
		Signer:          wallet.NewKeyWallet(key, testConfig.ChainID, nil),
	})
	require.ErrorIs(err, ErrGatewayNotImplemented)
	require.ErrorIs(err, gateway.ErrNotConfigured)

	_, err = c.PublicDecrypt(context.Background(), PublicDecryptionRequest{ContractAddress: testContract})
	require.ErrorIs(err, ErrGatewayNotImplemented)

	// An unconfigured HTTP gateway fails the same way
	c, err = NewClient(testConfig, fhe.LocalFactory, WithGateway(gateway.NewClient("")))
	require.NoError(err)
	_, err = c.PublicDecrypt(context.Background(), PublicDecryptionRequest{ContractAddress: testContract})
	require.ErrorIs(err, ErrGatewayNotImplemented)
}

func TestDecryptUint64Overflow(t *testing.T) {
	require := require.New(t)

	c, err := NewClient(testConfig, fhe.LocalFactory, WithGateway(fixedGateway{
		value: new(big.Int).Lsh(big.NewInt(1), 64),
	}))
	require.NoError(err)

	key, err := crypto.GenerateKey()
	require.NoError(err)
	_, err = c.DecryptUint64(context.Background(), DecryptionRequest{
		ContractAddress: testContract,
		Signer:          wallet.NewKeyWallet(key, testConfig.ChainID, nil),
	})
	require.ErrorIs(err, ErrDecryptionFailed)
}

type fixedGateway struct {
	value *big.Int
}

func (g fixedGateway) UserDecrypt(context.Context, *gateway.UserDecryptRequest) (*big.Int, error) {
	return g.value, nil
}

func (g fixedGateway) PublicDecrypt(context.Context, *gateway.PublicDecryptRequest) (*big.Int, error) {
	return g.value, nil
}
