package rpc

import (
	"errors"
	"fmt"
	"time"

	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// ServerTimestampPlaceholder is the string value a client writes to ask the
// server to stamp a field with its own time.
const ServerTimestampPlaceholder = "__server_timestamp__"

// message is a typed request or response. On the wire every message is a
// google.protobuf.Struct keyed by the field names below.
type message interface {
	toWire() (*structpb.Struct, error)
	fromWire(*structpb.Struct) error
}

type CreateAccountRequest struct {
	Email    string
	Password string
}

func (m *CreateAccountRequest) toWire() (*structpb.Struct, error) {
	return newStruct(map[string]*structpb.Value{
		"email":    structpb.NewStringValue(m.Email),
		"password": structpb.NewStringValue(m.Password),
	}), nil
}

func (m *CreateAccountRequest) fromWire(s *structpb.Struct) error {
	m.Email = stringField(s, "email")
	m.Password = stringField(s, "password")
	return nil
}

// SessionResponse is returned by every call that signs an account in.
type SessionResponse struct {
	AccountID    string
	Email        string
	AccessToken  string
	RefreshToken string
	ExpiresAt    *timestamppb.Timestamp
}

func (m *SessionResponse) toWire() (*structpb.Struct, error) {
	return newStruct(map[string]*structpb.Value{
		"account_id":    structpb.NewStringValue(m.AccountID),
		"email":         structpb.NewStringValue(m.Email),
		"access_token":  structpb.NewStringValue(m.AccessToken),
		"refresh_token": structpb.NewStringValue(m.RefreshToken),
		"expires_at":    timestampValue(m.ExpiresAt),
	}), nil
}

func (m *SessionResponse) fromWire(s *structpb.Struct) error {
	expiresAt, err := timestampField(s, "expires_at")
	if err != nil {
		return err
	}
	m.AccountID = stringField(s, "account_id")
	m.Email = stringField(s, "email")
	m.AccessToken = stringField(s, "access_token")
	m.RefreshToken = stringField(s, "refresh_token")
	m.ExpiresAt = expiresAt
	return nil
}

type VerifyCredentialsRequest struct {
	Email    string
	Password string
}

func (m *VerifyCredentialsRequest) toWire() (*structpb.Struct, error) {
	return newStruct(map[string]*structpb.Value{
		"email":    structpb.NewStringValue(m.Email),
		"password": structpb.NewStringValue(m.Password),
	}), nil
}

func (m *VerifyCredentialsRequest) fromWire(s *structpb.Struct) error {
	m.Email = stringField(s, "email")
	m.Password = stringField(s, "password")
	return nil
}

type RefreshSessionRequest struct {
	RefreshToken string
}

func (m *RefreshSessionRequest) toWire() (*structpb.Struct, error) {
	return newStruct(map[string]*structpb.Value{
		"refresh_token": structpb.NewStringValue(m.RefreshToken),
	}), nil
}

func (m *RefreshSessionRequest) fromWire(s *structpb.Struct) error {
	m.RefreshToken = stringField(s, "refresh_token")
	return nil
}

type SignOutRequest struct {
	RefreshToken string
}

func (m *SignOutRequest) toWire() (*structpb.Struct, error) {
	return newStruct(map[string]*structpb.Value{
		"refresh_token": structpb.NewStringValue(m.RefreshToken),
	}), nil
}

func (m *SignOutRequest) fromWire(s *structpb.Struct) error {
	m.RefreshToken = stringField(s, "refresh_token")
	return nil
}

type SignOutResponse struct{}

func (m *SignOutResponse) toWire() (*structpb.Struct, error) { return newStruct(nil), nil }
func (m *SignOutResponse) fromWire(*structpb.Struct) error { return nil }

type PingRequest struct{}

func (m *PingRequest) toWire() (*structpb.Struct, error) { return newStruct(nil), nil }
func (m *PingRequest) fromWire(*structpb.Struct) error { return nil }

type PingResponse struct {
	Status string
}

func (m *PingResponse) toWire() (*structpb.Struct, error) {
	return newStruct(map[string]*structpb.Value{
		"status": structpb.NewStringValue(m.Status),
	}), nil
}

func (m *PingResponse) fromWire(s *structpb.Struct) error {
	m.Status = stringField(s, "status")
	return nil
}

// WriteRecordRequest carries the record as a Struct. Fields whose value is
// ServerTimestampPlaceholder are replaced by the server's clock.
type WriteRecordRequest struct {
	Collection string
	ID         string
	Data       *structpb.Struct
}

func (m *WriteRecordRequest) toWire() (*structpb.Struct, error) {
	if m.Data == nil {
		return nil, fmt.Errorf("rpc: write %s/%s: no data", m.Collection, m.ID)
	}
	return newStruct(map[string]*structpb.Value{
		"collection": structpb.NewStringValue(m.Collection),
		"id":         structpb.NewStringValue(m.ID),
		"data":       structpb.NewStructValue(m.Data),
	}), nil
}

func (m *WriteRecordRequest) fromWire(s *structpb.Struct) error {
	m.Collection = stringField(s, "collection")
	m.ID = stringField(s, "id")
	m.Data = structField(s, "data")
	return nil
}

type WriteRecordResponse struct{}

func (m *WriteRecordResponse) toWire() (*structpb.Struct, error) { return newStruct(nil), nil }
func (m *WriteRecordResponse) fromWire(*structpb.Struct) error { return nil }

type ReadRecordRequest struct {
	Collection string
	ID         string
}

func (m *ReadRecordRequest) toWire() (*structpb.Struct, error) {
	return newStruct(map[string]*structpb.Value{
		"collection": structpb.NewStringValue(m.Collection),
		"id":         structpb.NewStringValue(m.ID),
	}), nil
}

func (m *ReadRecordRequest) fromWire(s *structpb.Struct) error {
	m.Collection = stringField(s, "collection")
	m.ID = stringField(s, "id")
	return nil
}

type ReadRecordResponse struct {
	Found bool
	Data  *structpb.Struct
}

func (m *ReadRecordResponse) toWire() (*structpb.Struct, error) {
	fields := map[string]*structpb.Value{
		"found": structpb.NewBoolValue(m.Found),
	}
	if m.Data != nil {
		fields["data"] = structpb.NewStructValue(m.Data)
	}
	return newStruct(fields), nil
}

func (m *ReadRecordResponse) fromWire(s *structpb.Struct) error {
	m.Found = s.GetFields()["found"].GetBoolValue()
	m.Data = structField(s, "data")
	if m.Found && m.Data == nil {
		return errors.New("rpc: record found without data")
	}
	return nil
}

func newStruct(fields map[string]*structpb.Value) *structpb.Struct {
	if fields == nil {
		fields = map[string]*structpb.Value{}
	}
	return &structpb.Struct{Fields: fields}
}

func stringField(s *structpb.Struct, key string) string {
	return s.GetFields()[key].GetStringValue()
}

func structField(s *structpb.Struct, key string) *structpb.Struct {
	return s.GetFields()[key].GetStructValue()
}

// Timestamps travel in their proto3 JSON form, RFC 3339 in UTC.
func timestampValue(ts *timestamppb.Timestamp) *structpb.Value {
	if ts == nil {
		return structpb.NewNullValue()
	}
	return structpb.NewStringValue(ts.AsTime().UTC().Format(time.RFC3339Nano))
}

func timestampField(s *structpb.Struct, key string) (*timestamppb.Timestamp, error) {
	raw := stringField(s, key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return nil, fmt.Errorf("rpc: %s: %w", key, err)
	}
	return timestamppb.New(t), nil
}
