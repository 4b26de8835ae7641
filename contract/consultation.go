// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package contract

import (
	"context"
	_ "embed"
	"fmt"
	"math/big"

	ethereum "github.com/luxfi/geth"
	"github.com/luxfi/geth/accounts/abi"
	"github.com/luxfi/geth/common"
)

const (
	// ConsultationAddress is the deployed legal consultation contract
	ConsultationAddress = "0xBA9Daca2dEE126861963cd31752A9aCBc5488Df7"

	// ExpectedChainID is the chain the consultation contract is deployed on
	ExpectedChainID uint64 = 9000
)

//go:embed consultation.abi.json
var ConsultationABI string

// ConsultationDetails is the return value of getConsultationDetails
type ConsultationDetails struct {
	EncryptedQuestion string
	EncryptedResponse string
	Timestamp         *big.Int
	Fee               *big.Int
	IsResolved        bool
	IsPaid            bool
}

// LawyerProfile is the return value of getLawyerProfile
type LawyerProfile struct {
	ConsultationCount *big.Int
	IsVerified        bool
	IsActive          bool
}

// ClientStats is the return value of getClientStats
type ClientStats struct {
	TotalConsultations *big.Int
	TotalSpent         *big.Int
}

// SystemStats is the return value of getSystemStats
type SystemStats struct {
	TotalConsultations *big.Int
	TotalLawyers       *big.Int
	VerifiedLawyers    *big.Int
}

// Consultation builds calldata for the consultation contract and reads its
// state through a ContractCaller.
type Consultation struct {
	address common.Address
	abi     abi.ABI
	caller  ethereum.ContractCaller
}

// NewConsultation binds the contract at address. caller may be nil when
// only calldata is needed.
func NewConsultation(address common.Address, caller ethereum.ContractCaller) (*Consultation, error) {
	parsed, err := LoadABI(ConsultationABI)
	if err != nil {
		return nil, fmt.Errorf("failed to parse consultation ABI: %w", err)
	}
	return &Consultation{
		address: address,
		abi:     parsed,
		caller:  caller,
	}, nil
}

func (c *Consultation) Address() common.Address { return c.address }

func (c *Consultation) ABI() abi.ABI { return c.abi }

// SubmitConsultation encodes a payable submission. The fee is sent as the
// transaction value.
func (c *Consultation) SubmitConsultation(clientID, categoryID uint32, encryptedQuestion string) ([]byte, error) {
	if _, ok := CategoryName(categoryID); !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCategory, categoryID)
	}
	return c.abi.Pack("submitConsultation", clientID, categoryID, encryptedQuestion)
}

func (c *Consultation) RegisterLawyer(specialty uint32) ([]byte, error) {
	if _, ok := CategoryName(specialty); !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCategory, specialty)
	}
	return c.abi.Pack("registerLawyer", specialty)
}

func (c *Consultation) AssignConsultation(consultationID, lawyerID *big.Int) ([]byte, error) {
	return c.abi.Pack("assignConsultation", consultationID, lawyerID)
}

func (c *Consultation) ProvideResponse(consultationID *big.Int, encryptedResponse string) ([]byte, error) {
	return c.abi.Pack("provideResponse", consultationID, encryptedResponse)
}

func (c *Consultation) VerifyLawyer(lawyerID *big.Int) ([]byte, error) {
	return c.abi.Pack("verifyLawyer", lawyerID)
}

func (c *Consultation) UpdateLawyerRating(lawyerID *big.Int, rating uint32) ([]byte, error) {
	return c.abi.Pack("updateLawyerRating", lawyerID, rating)
}

func (c *Consultation) DeactivateLawyer(lawyerID *big.Int) ([]byte, error) {
	return c.abi.Pack("deactivateLawyer", lawyerID)
}

func (c *Consultation) WithdrawFees(amount *big.Int) ([]byte, error) {
	return c.abi.Pack("withdrawFees", amount)
}

// call executes a read-only method and returns its raw output.
func (c *Consultation) call(ctx context.Context, method string, args ...any) ([]byte, error) {
	if c.caller == nil {
		return nil, fmt.Errorf("no contract caller configured for %s", method)
	}
	data, err := c.abi.Pack(method, args...)
	if err != nil {
		return nil, err
	}
	out, err := c.caller.CallContract(ctx, ethereum.CallMsg{
		To:   &c.address,
		Data: data,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("%s call failed: %w", method, err)
	}
	return out, nil
}

func (c *Consultation) callInto(ctx context.Context, v any, method string, args ...any) error {
	out, err := c.call(ctx, method, args...)
	if err != nil {
		return err
	}
	return c.abi.UnpackIntoInterface(v, method, out)
}

func (c *Consultation) callSingle(ctx context.Context, method string, args ...any) (any, error) {
	out, err := c.call(ctx, method, args...)
	if err != nil {
		return nil, err
	}
	values, err := c.abi.Unpack(method, out)
	if err != nil {
		return nil, err
	}
	if len(values) != 1 {
		return nil, fmt.Errorf("%s returned %d values", method, len(values))
	}
	return values[0], nil
}

func (c *Consultation) ConsultationDetails(ctx context.Context, consultationID *big.Int) (*ConsultationDetails, error) {
	details := new(ConsultationDetails)
	if err := c.callInto(ctx, details, "getConsultationDetails", consultationID); err != nil {
		return nil, err
	}
	return details, nil
}

func (c *Consultation) LawyerProfile(ctx context.Context, lawyerID *big.Int) (*LawyerProfile, error) {
	profile := new(LawyerProfile)
	if err := c.callInto(ctx, profile, "getLawyerProfile", lawyerID); err != nil {
		return nil, err
	}
	return profile, nil
}

func (c *Consultation) ClientStats(ctx context.Context, client common.Address) (*ClientStats, error) {
	stats := new(ClientStats)
	if err := c.callInto(ctx, stats, "getClientStats", client); err != nil {
		return nil, err
	}
	return stats, nil
}

func (c *Consultation) SystemStats(ctx context.Context) (*SystemStats, error) {
	stats := new(SystemStats)
	if err := c.callInto(ctx, stats, "getSystemStats"); err != nil {
		return nil, err
	}
	return stats, nil
}

func (c *Consultation) Admin(ctx context.Context) (common.Address, error) {
	v, err := c.callSingle(ctx, "admin")
	if err != nil {
		return common.Address{}, err
	}
	addr, ok := v.(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("admin returned %T", v)
	}
	return addr, nil
}

func (c *Consultation) ConsultationCounter(ctx context.Context) (*big.Int, error) {
	return c.callBig(ctx, "consultationCounter")
}

func (c *Consultation) LawyerCounter(ctx context.Context) (*big.Int, error) {
	return c.callBig(ctx, "lawyerCounter")
}

func (c *Consultation) LawyerIDByAddress(ctx context.Context, lawyer common.Address) (*big.Int, error) {
	return c.callBig(ctx, "getLawyerIdByAddress", lawyer)
}

func (c *Consultation) IsRegisteredLawyer(ctx context.Context, lawyer common.Address) (bool, error) {
	v, err := c.callSingle(ctx, "isRegisteredLawyer", lawyer)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("isRegisteredLawyer returned %T", v)
	}
	return b, nil
}

// LegalCategory reads a category name from the contract.
func (c *Consultation) LegalCategory(ctx context.Context, categoryID *big.Int) (string, error) {
	v, err := c.callSingle(ctx, "getLegalCategory", categoryID)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("getLegalCategory returned %T", v)
	}
	return s, nil
}

func (c *Consultation) callBig(ctx context.Context, method string, args ...any) (*big.Int, error) {
	v, err := c.callSingle(ctx, method, args...)
	if err != nil {
		return nil, err
	}
	n, ok := v.(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%s returned %T", method, v)
	}
	return n, nil
}
