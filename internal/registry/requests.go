package registry

import (
	"github.com/go-playground/validator/v10"

	"github.com/roach88/fractalreg/internal/grant"
)

// validate is a package-level singleton; building validators is expensive.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("account_id", func(fl validator.FieldLevel) bool {
		_, err := grant.ParseAccountID(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("public_key", func(fl validator.FieldLevel) bool {
		_, err := grant.ParsePublicKey(fl.Field().String())
		return err == nil
	})
	return v
}

// GrantRequest is the external form of insert_grant and delete_grant
// arguments, before parsing.
type GrantRequest struct {
	Grantee     string  `json:"grantee" yaml:"grantee" validate:"required,public_key"`
	DataID      string  `json:"data_id" yaml:"data_id"`
	LockedUntil *uint64 `json:"locked_until,omitempty" yaml:"locked_until,omitempty"`
}

// Parse validates the request and returns its typed grantee.
func (r GrantRequest) Parse() (grant.PublicKey, error) {
	if err := validate.Struct(r); err != nil {
		return "", NewInvalidArgumentError("invalid grant arguments", err)
	}
	pk, err := grant.ParsePublicKey(r.Grantee)
	if err != nil {
		return "", NewInvalidArgumentError("invalid grantee", err)
	}
	return pk, nil
}

// FindRequest is the external form of find_grants arguments, before
// parsing. Empty strings stand for absent criteria only when the pointer
// is nil; a present empty data id matches grants with an empty data id.
type FindRequest struct {
	Owner   *string `json:"owner,omitempty" yaml:"owner,omitempty" validate:"omitempty,account_id"`
	Grantee *string `json:"grantee,omitempty" yaml:"grantee,omitempty" validate:"omitempty,public_key"`
	DataID  *string `json:"data_id,omitempty" yaml:"data_id,omitempty"`
}

// Parse validates the request and returns the typed Query. A request with
// neither owner nor grantee is an invalid query, not an invalid argument.
func (r FindRequest) Parse() (Query, error) {
	if r.Owner == nil && r.Grantee == nil {
		return Query{}, NewInvalidQueryError()
	}
	if err := validate.Struct(r); err != nil {
		return Query{}, NewInvalidArgumentError("invalid query arguments", err)
	}

	q := Query{DataID: r.DataID}
	if r.Owner != nil {
		owner := grant.AccountID(*r.Owner)
		q.Owner = &owner
	}
	if r.Grantee != nil {
		pk, err := grant.ParsePublicKey(*r.Grantee)
		if err != nil {
			return Query{}, NewInvalidArgumentError("invalid grantee", err)
		}
		q.Grantee = &pk
	}
	return q, nil
}

// ParseCaller validates an account id supplied as the authenticated caller.
func ParseCaller(s string) (grant.AccountID, error) {
	a, err := grant.ParseAccountID(s)
	if err != nil {
		return "", NewInvalidArgumentError("invalid caller", err)
	}
	return a, nil
}
