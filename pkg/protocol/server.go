package protocol

import (
	"fmt"

	"github.com/clockworklabs/spacetimedb-go/pkg/bsatn"
)

// ServerMessage is a message sent from the server to a client. Like client
// messages, each encodes as one enum value: variant index plus a struct
// payload.
type ServerMessage interface {
	// Variant returns the wire variant index of the message.
	Variant() uint32

	serverMessage()
}

// Server message variant indices.
const (
	VariantIdentityToken           uint32 = 0
	VariantInitialSubscription     uint32 = 1
	VariantTransactionUpdate       uint32 = 2
	VariantTransactionUpdateLight  uint32 = 3
	VariantSubscribeApplied        uint32 = 4
	VariantUnsubscribeApplied      uint32 = 5
	VariantSubscriptionError       uint32 = 6
	VariantSubscribeMultiApplied   uint32 = 7
	VariantUnsubscribeMultiApplied uint32 = 8
	VariantOneOffQueryResponse     uint32 = 9
)

// UpdateStatus variant indices.
const (
	statusCommitted uint32 = 0
	statusFailed    uint32 = 1
)

// TableUpdate is the change set for one table: inserted and deleted rows,
// each row an opaque BSATN blob decoded lazily against the table's schema.
type TableUpdate struct {
	TableID   uint32   `json:"table_id"`
	TableName string   `json:"table_name"`
	NumRows   uint32   `json:"num_rows"`
	Inserts   [][]byte `json:"inserts"`
	Deletes   [][]byte `json:"deletes"`
}

// DatabaseUpdate is the full change set of one transaction or subscription
// snapshot, grouped by table.
type DatabaseUpdate struct {
	Tables []TableUpdate `json:"tables"`
}

// UpdateStatus is the outcome of a transaction: committed with a database
// update, or failed with an error message.
type UpdateStatus struct {
	Committed *DatabaseUpdate `json:"Committed,omitempty"`
	Failed    *string         `json:"Failed,omitempty"`
}

// StatusCommitted constructs a committed status carrying upd.
func StatusCommitted(upd DatabaseUpdate) UpdateStatus {
	return UpdateStatus{Committed: &upd}
}

// StatusFailed constructs a failed status carrying the error message.
func StatusFailed(msg string) UpdateStatus {
	return UpdateStatus{Failed: &msg}
}

// IdentityToken is the first message on every connection: the client's
// identity, a bearer token for reconnecting as that identity, and the
// server-assigned connection id.
type IdentityToken struct {
	Identity     Identity     `json:"identity"`
	Token        string       `json:"token"`
	ConnectionID ConnectionID `json:"connection_id"`
}

func (IdentityToken) Variant() uint32 { return VariantIdentityToken }
func (IdentityToken) serverMessage()  {}

// InitialSubscription delivers the full current state matching a legacy
// Subscribe request.
type InitialSubscription struct {
	DatabaseUpdate             DatabaseUpdate `json:"database_update"`
	RequestID                  uint32         `json:"request_id"`
	TotalHostExecutionDuration TimeDuration   `json:"total_host_execution_duration"`
}

func (InitialSubscription) Variant() uint32 { return VariantInitialSubscription }
func (InitialSubscription) serverMessage()  {}

// ReducerCallInfo describes the reducer invocation a TransactionUpdate
// reports on.
type ReducerCallInfo struct {
	ReducerName string `json:"reducer_name"`
	ReducerID   uint32 `json:"reducer_id"`
	Args        []byte `json:"args"`
	RequestID   uint32 `json:"request_id"`
}

// TransactionUpdate reports one transaction: its outcome, provenance, and
// resource accounting.
type TransactionUpdate struct {
	Status                     UpdateStatus    `json:"status"`
	Timestamp                  Timestamp       `json:"timestamp"`
	CallerIdentity             Identity        `json:"caller_identity"`
	CallerConnectionID         ConnectionID    `json:"caller_connection_id"`
	ReducerCall                ReducerCallInfo `json:"reducer_call"`
	EnergyQuantaUsed           EnergyQuanta    `json:"energy_quanta_used"`
	TotalHostExecutionDuration TimeDuration    `json:"total_host_execution_duration"`
}

func (TransactionUpdate) Variant() uint32 { return VariantTransactionUpdate }
func (TransactionUpdate) serverMessage()  {}

// TransactionUpdateLight is the reduced form of TransactionUpdate: just the
// row changes, no provenance or accounting.
type TransactionUpdateLight struct {
	RequestID uint32         `json:"request_id"`
	Update    DatabaseUpdate `json:"update"`
}

func (TransactionUpdateLight) Variant() uint32 { return VariantTransactionUpdateLight }
func (TransactionUpdateLight) serverMessage()  {}

// SubscribeApplied confirms a SubscribeSingle and carries the query's
// initial matching rows.
type SubscribeApplied struct {
	RequestID                        uint32      `json:"request_id"`
	TotalHostExecutionDurationMicros uint64      `json:"total_host_execution_duration_micros"`
	QueryID                          QueryID     `json:"query_id"`
	TableID                          uint32      `json:"table_id"`
	TableName                        string      `json:"table_name"`
	TableRows                        TableUpdate `json:"table_rows"`
}

func (SubscribeApplied) Variant() uint32 { return VariantSubscribeApplied }
func (SubscribeApplied) serverMessage()  {}

// UnsubscribeApplied confirms an Unsubscribe and carries the rows that left
// the client's view with it.
type UnsubscribeApplied struct {
	RequestID                        uint32      `json:"request_id"`
	TotalHostExecutionDurationMicros uint64      `json:"total_host_execution_duration_micros"`
	QueryID                          QueryID     `json:"query_id"`
	TableID                          uint32      `json:"table_id"`
	TableName                        string      `json:"table_name"`
	TableRows                        TableUpdate `json:"table_rows"`
}

func (UnsubscribeApplied) Variant() uint32 { return VariantUnsubscribeApplied }
func (UnsubscribeApplied) serverMessage()  {}

// SubscriptionError reports a failed or broken subscription. RequestID is
// absent when the error was not triggered by a specific request; QueryID is
// absent for errors that poison the whole connection.
type SubscriptionError struct {
	TotalHostExecutionDurationMicros uint64  `json:"total_host_execution_duration_micros"`
	RequestID                        *uint32 `json:"request_id"`
	QueryID                          *uint32 `json:"query_id"`
	TableID                          *uint32 `json:"table_id"`
	Error                            string  `json:"error"`
}

func (SubscriptionError) Variant() uint32 { return VariantSubscriptionError }
func (SubscriptionError) serverMessage()  {}

// SubscribeMultiApplied confirms a SubscribeMulti and carries the initial
// rows for the whole query set.
type SubscribeMultiApplied struct {
	RequestID                        uint32         `json:"request_id"`
	TotalHostExecutionDurationMicros uint64         `json:"total_host_execution_duration_micros"`
	QueryID                          QueryID        `json:"query_id"`
	Update                           DatabaseUpdate `json:"update"`
}

func (SubscribeMultiApplied) Variant() uint32 { return VariantSubscribeMultiApplied }
func (SubscribeMultiApplied) serverMessage()  {}

// UnsubscribeMultiApplied confirms an UnsubscribeMulti.
type UnsubscribeMultiApplied struct {
	RequestID                        uint32         `json:"request_id"`
	TotalHostExecutionDurationMicros uint64         `json:"total_host_execution_duration_micros"`
	QueryID                          QueryID        `json:"query_id"`
	Update                           DatabaseUpdate `json:"update"`
}

func (UnsubscribeMultiApplied) Variant() uint32 { return VariantUnsubscribeMultiApplied }
func (UnsubscribeMultiApplied) serverMessage()  {}

// OneOffTable is one table's rows in a one-off query result.
type OneOffTable struct {
	TableName string   `json:"table_name"`
	Rows      [][]byte `json:"rows"`
}

// OneOffQueryResponse answers a OneOffQuery. Exactly one of Error and
// Tables is meaningful.
type OneOffQueryResponse struct {
	MessageID                  []byte        `json:"message_id"`
	Error                      *string       `json:"error"`
	Tables                     []OneOffTable `json:"tables"`
	TotalHostExecutionDuration TimeDuration  `json:"total_host_execution_duration"`
}

func (OneOffQueryResponse) Variant() uint32 { return VariantOneOffQueryResponse }
func (OneOffQueryResponse) serverMessage()  {}

// EncodeServerMessage encodes a server message to its binary wire form.
func EncodeServerMessage(msg ServerMessage) ([]byte, error) {
	w := bsatn.NewWriter()
	if err := EncodeServerMessageTo(w, msg); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// EncodeServerMessageTo writes the enum envelope and payload for msg.
func EncodeServerMessageTo(w *bsatn.Writer, msg ServerMessage) error {
	w.WriteEnumHeader(msg.Variant())
	switch m := msg.(type) {
	case IdentityToken:
		return encodeIdentityToken(w, m)
	case InitialSubscription:
		return encodeInitialSubscription(w, m)
	case TransactionUpdate:
		return encodeTransactionUpdate(w, m)
	case TransactionUpdateLight:
		return encodeTransactionUpdateLight(w, m)
	case SubscribeApplied:
		return encodeSubscribeApplied(w, m.RequestID, m.TotalHostExecutionDurationMicros, m.QueryID, m.TableID, m.TableName, m.TableRows)
	case UnsubscribeApplied:
		return encodeSubscribeApplied(w, m.RequestID, m.TotalHostExecutionDurationMicros, m.QueryID, m.TableID, m.TableName, m.TableRows)
	case SubscriptionError:
		return encodeSubscriptionError(w, m)
	case SubscribeMultiApplied:
		return encodeMultiApplied(w, m.RequestID, m.TotalHostExecutionDurationMicros, m.QueryID, m.Update)
	case UnsubscribeMultiApplied:
		return encodeMultiApplied(w, m.RequestID, m.TotalHostExecutionDurationMicros, m.QueryID, m.Update)
	case OneOffQueryResponse:
		return encodeOneOffQueryResponse(w, m)
	default:
		return fmt.Errorf("%w: %T", ErrUnknownVariant, msg)
	}
}

func writeRows(w *bsatn.Writer, rows [][]byte) error {
	w.WriteArrayHeader(len(rows))
	for _, row := range rows {
		if err := w.WriteBytes(row); err != nil {
			return err
		}
	}
	return nil
}

func readRows(r *bsatn.Reader) ([][]byte, error) {
	n, err := readArrayHeader(r)
	if err != nil {
		return nil, err
	}
	out := make([][]byte, 0, n)
	for i := 0; i < n; i++ {
		row, err := readTaggedBytes(r)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, nil
}

func encodeTableUpdate(w *bsatn.Writer, t TableUpdate) error {
	w.WriteStructHeader(5)
	if err := w.WriteFieldName("table_id"); err != nil {
		return err
	}
	w.WriteU32(t.TableID)
	if err := w.WriteFieldName("table_name"); err != nil {
		return err
	}
	if err := w.WriteString(t.TableName); err != nil {
		return err
	}
	if err := w.WriteFieldName("num_rows"); err != nil {
		return err
	}
	w.WriteU32(t.NumRows)
	if err := w.WriteFieldName("inserts"); err != nil {
		return err
	}
	if err := writeRows(w, t.Inserts); err != nil {
		return err
	}
	if err := w.WriteFieldName("deletes"); err != nil {
		return err
	}
	return writeRows(w, t.Deletes)
}

func decodeTableUpdate(r *bsatn.Reader) (TableUpdate, error) {
	n, err := readStructHeader(r)
	if err != nil {
		return TableUpdate{}, err
	}
	var t TableUpdate
	for i := 0; i < n; i++ {
		name, err := r.ReadFieldName()
		if err != nil {
			return TableUpdate{}, err
		}
		switch name {
		case "table_id":
			t.TableID, err = readTaggedU32(r)
		case "table_name":
			t.TableName, err = readTaggedString(r)
		case "num_rows":
			t.NumRows, err = readTaggedU32(r)
		case "inserts":
			t.Inserts, err = readRows(r)
		case "deletes":
			t.Deletes, err = readRows(r)
		default:
			err = r.SkipValue()
		}
		if err != nil {
			return TableUpdate{}, err
		}
	}
	return t, nil
}

func encodeDatabaseUpdate(w *bsatn.Writer, u DatabaseUpdate) error {
	w.WriteStructHeader(1)
	if err := w.WriteFieldName("tables"); err != nil {
		return err
	}
	w.WriteArrayHeader(len(u.Tables))
	for _, t := range u.Tables {
		if err := encodeTableUpdate(w, t); err != nil {
			return err
		}
	}
	return nil
}

func decodeDatabaseUpdate(r *bsatn.Reader) (DatabaseUpdate, error) {
	n, err := readStructHeader(r)
	if err != nil {
		return DatabaseUpdate{}, err
	}
	var u DatabaseUpdate
	for i := 0; i < n; i++ {
		name, err := r.ReadFieldName()
		if err != nil {
			return DatabaseUpdate{}, err
		}
		switch name {
		case "tables":
			count, err := readArrayHeader(r)
			if err != nil {
				return DatabaseUpdate{}, err
			}
			u.Tables = make([]TableUpdate, 0, count)
			for j := 0; j < count; j++ {
				t, err := decodeTableUpdate(r)
				if err != nil {
					return DatabaseUpdate{}, err
				}
				u.Tables = append(u.Tables, t)
			}
		default:
			if err := r.SkipValue(); err != nil {
				return DatabaseUpdate{}, err
			}
		}
	}
	return u, nil
}

func encodeUpdateStatus(w *bsatn.Writer, s UpdateStatus) error {
	switch {
	case s.Committed != nil:
		w.WriteEnumHeader(statusCommitted)
		return encodeDatabaseUpdate(w, *s.Committed)
	case s.Failed != nil:
		w.WriteEnumHeader(statusFailed)
		return w.WriteString(*s.Failed)
	default:
		return fmt.Errorf("%w: empty update status", ErrUnknownVariant)
	}
}

func decodeUpdateStatus(r *bsatn.Reader) (UpdateStatus, error) {
	tag, err := r.ReadTag()
	if err != nil {
		return UpdateStatus{}, err
	}
	if tag != bsatn.TagEnum {
		return UpdateStatus{}, fmt.Errorf("%w: expected status enum, got %s", bsatn.ErrInvalidTag, tag)
	}
	variant, err := r.ReadEnumHeader()
	if err != nil {
		return UpdateStatus{}, err
	}
	switch variant {
	case statusCommitted:
		upd, err := decodeDatabaseUpdate(r)
		if err != nil {
			return UpdateStatus{}, err
		}
		return StatusCommitted(upd), nil
	case statusFailed:
		msg, err := readTaggedString(r)
		if err != nil {
			return UpdateStatus{}, err
		}
		return StatusFailed(msg), nil
	default:
		return UpdateStatus{}, fmt.Errorf("%w: status variant %d", ErrUnknownVariant, variant)
	}
}

func encodeIdentityToken(w *bsatn.Writer, m IdentityToken) error {
	w.WriteStructHeader(3)
	if err := w.WriteFieldName("identity"); err != nil {
		return err
	}
	if err := w.WriteBytes(m.Identity.Data); err != nil {
		return err
	}
	if err := w.WriteFieldName("token"); err != nil {
		return err
	}
	if err := w.WriteString(m.Token); err != nil {
		return err
	}
	if err := w.WriteFieldName("connection_id"); err != nil {
		return err
	}
	return w.WriteBytes(m.ConnectionID.Data)
}

func decodeIdentityToken(r *bsatn.Reader) (IdentityToken, error) {
	n, err := readStructHeader(r)
	if err != nil {
		return IdentityToken{}, err
	}
	var m IdentityToken
	for i := 0; i < n; i++ {
		name, err := r.ReadFieldName()
		if err != nil {
			return IdentityToken{}, err
		}
		switch name {
		case "identity":
			m.Identity.Data, err = readTaggedBytes(r)
		case "token":
			m.Token, err = readTaggedString(r)
		case "connection_id":
			m.ConnectionID.Data, err = readTaggedBytes(r)
		default:
			err = r.SkipValue()
		}
		if err != nil {
			return IdentityToken{}, err
		}
	}
	return m, nil
}

func encodeInitialSubscription(w *bsatn.Writer, m InitialSubscription) error {
	w.WriteStructHeader(3)
	if err := w.WriteFieldName("database_update"); err != nil {
		return err
	}
	if err := encodeDatabaseUpdate(w, m.DatabaseUpdate); err != nil {
		return err
	}
	if err := w.WriteFieldName("request_id"); err != nil {
		return err
	}
	w.WriteU32(m.RequestID)
	if err := w.WriteFieldName("total_host_execution_duration"); err != nil {
		return err
	}
	w.WriteU64(m.TotalHostExecutionDuration.Nanos)
	return nil
}

func decodeInitialSubscription(r *bsatn.Reader) (InitialSubscription, error) {
	n, err := readStructHeader(r)
	if err != nil {
		return InitialSubscription{}, err
	}
	var m InitialSubscription
	for i := 0; i < n; i++ {
		name, err := r.ReadFieldName()
		if err != nil {
			return InitialSubscription{}, err
		}
		switch name {
		case "database_update":
			m.DatabaseUpdate, err = decodeDatabaseUpdate(r)
		case "request_id":
			m.RequestID, err = readTaggedU32(r)
		case "total_host_execution_duration":
			m.TotalHostExecutionDuration.Nanos, err = readTaggedU64(r)
		default:
			err = r.SkipValue()
		}
		if err != nil {
			return InitialSubscription{}, err
		}
	}
	return m, nil
}

func encodeReducerCallInfo(w *bsatn.Writer, c ReducerCallInfo) error {
	w.WriteStructHeader(4)
	if err := w.WriteFieldName("reducer_name"); err != nil {
		return err
	}
	if err := w.WriteString(c.ReducerName); err != nil {
		return err
	}
	if err := w.WriteFieldName("reducer_id"); err != nil {
		return err
	}
	w.WriteU32(c.ReducerID)
	if err := w.WriteFieldName("args"); err != nil {
		return err
	}
	if err := w.WriteBytes(c.Args); err != nil {
		return err
	}
	if err := w.WriteFieldName("request_id"); err != nil {
		return err
	}
	w.WriteU32(c.RequestID)
	return nil
}

func decodeReducerCallInfo(r *bsatn.Reader) (ReducerCallInfo, error) {
	n, err := readStructHeader(r)
	if err != nil {
		return ReducerCallInfo{}, err
	}
	var c ReducerCallInfo
	for i := 0; i < n; i++ {
		name, err := r.ReadFieldName()
		if err != nil {
			return ReducerCallInfo{}, err
		}
		switch name {
		case "reducer_name":
			c.ReducerName, err = readTaggedString(r)
		case "reducer_id":
			c.ReducerID, err = readTaggedU32(r)
		case "args":
			c.Args, err = readTaggedBytes(r)
		case "request_id":
			c.RequestID, err = readTaggedU32(r)
		default:
			err = r.SkipValue()
		}
		if err != nil {
			return ReducerCallInfo{}, err
		}
	}
	return c, nil
}

func encodeTransactionUpdate(w *bsatn.Writer, m TransactionUpdate) error {
	w.WriteStructHeader(7)
	if err := w.WriteFieldName("status"); err != nil {
		return err
	}
	if err := encodeUpdateStatus(w, m.Status); err != nil {
		return err
	}
	if err := w.WriteFieldName("timestamp"); err != nil {
		return err
	}
	w.WriteU64(m.Timestamp.NanosSinceEpoch)
	if err := w.WriteFieldName("caller_identity"); err != nil {
		return err
	}
	if err := w.WriteBytes(m.CallerIdentity.Data); err != nil {
		return err
	}
	if err := w.WriteFieldName("caller_connection_id"); err != nil {
		return err
	}
	if err := w.WriteBytes(m.CallerConnectionID.Data); err != nil {
		return err
	}
	if err := w.WriteFieldName("reducer_call"); err != nil {
		return err
	}
	if err := encodeReducerCallInfo(w, m.ReducerCall); err != nil {
		return err
	}
	if err := w.WriteFieldName("energy_quanta_used"); err != nil {
		return err
	}
	if err := m.EnergyQuantaUsed.EncodeTo(w); err != nil {
		return err
	}
	if err := w.WriteFieldName("total_host_execution_duration"); err != nil {
		return err
	}
	w.WriteU64(m.TotalHostExecutionDuration.Nanos)
	return nil
}

func decodeTransactionUpdate(r *bsatn.Reader) (TransactionUpdate, error) {
	n, err := readStructHeader(r)
	if err != nil {
		return TransactionUpdate{}, err
	}
	var m TransactionUpdate
	for i := 0; i < n; i++ {
		name, err := r.ReadFieldName()
		if err != nil {
			return TransactionUpdate{}, err
		}
		switch name {
		case "status":
			m.Status, err = decodeUpdateStatus(r)
		case "timestamp":
			m.Timestamp.NanosSinceEpoch, err = readTaggedU64(r)
		case "caller_identity":
			m.CallerIdentity.Data, err = readTaggedBytes(r)
		case "caller_connection_id":
			m.CallerConnectionID.Data, err = readTaggedBytes(r)
		case "reducer_call":
			m.ReducerCall, err = decodeReducerCallInfo(r)
		case "energy_quanta_used":
			m.EnergyQuantaUsed, err = DecodeEnergyQuantaFrom(r)
		case "total_host_execution_duration":
			m.TotalHostExecutionDuration.Nanos, err = readTaggedU64(r)
		default:
			err = r.SkipValue()
		}
		if err != nil {
			return TransactionUpdate{}, err
		}
	}
	return m, nil
}

func encodeTransactionUpdateLight(w *bsatn.Writer, m TransactionUpdateLight) error {
	w.WriteStructHeader(2)
	if err := w.WriteFieldName("request_id"); err != nil {
		return err
	}
	w.WriteU32(m.RequestID)
	if err := w.WriteFieldName("update"); err != nil {
		return err
	}
	return encodeDatabaseUpdate(w, m.Update)
}

func decodeTransactionUpdateLight(r *bsatn.Reader) (TransactionUpdateLight, error) {
	n, err := readStructHeader(r)
	if err != nil {
		return TransactionUpdateLight{}, err
	}
	var m TransactionUpdateLight
	for i := 0; i < n; i++ {
		name, err := r.ReadFieldName()
		if err != nil {
			return TransactionUpdateLight{}, err
		}
		switch name {
		case "request_id":
			m.RequestID, err = readTaggedU32(r)
		case "update":
			m.Update, err = decodeDatabaseUpdate(r)
		default:
			err = r.SkipValue()
		}
		if err != nil {
			return TransactionUpdateLight{}, err
		}
	}
	return m, nil
}

func encodeSubscribeApplied(w *bsatn.Writer, requestID uint32, durationMicros uint64, queryID QueryID, tableID uint32, tableName string, rows TableUpdate) error {
	w.WriteStructHeader(6)
	if err := w.WriteFieldName("request_id"); err != nil {
		return err
	}
	w.WriteU32(requestID)
	if err := w.WriteFieldName("total_host_execution_duration_micros"); err != nil {
		return err
	}
	w.WriteU64(durationMicros)
	if err := w.WriteFieldName("query_id"); err != nil {
		return err
	}
	if err := writeQueryID(w, queryID); err != nil {
		return err
	}
	if err := w.WriteFieldName("table_id"); err != nil {
		return err
	}
	w.WriteU32(tableID)
	if err := w.WriteFieldName("table_name"); err != nil {
		return err
	}
	if err := w.WriteString(tableName); err != nil {
		return err
	}
	if err := w.WriteFieldName("table_rows"); err != nil {
		return err
	}
	return encodeTableUpdate(w, rows)
}

func decodeSubscribeApplied(r *bsatn.Reader) (SubscribeApplied, error) {
	n, err := readStructHeader(r)
	if err != nil {
		return SubscribeApplied{}, err
	}
	var m SubscribeApplied
	for i := 0; i < n; i++ {
		name, err := r.ReadFieldName()
		if err != nil {
			return SubscribeApplied{}, err
		}
		switch name {
		case "request_id":
			m.RequestID, err = readTaggedU32(r)
		case "total_host_execution_duration_micros":
			m.TotalHostExecutionDurationMicros, err = readTaggedU64(r)
		case "query_id":
			m.QueryID, err = readQueryID(r)
		case "table_id":
			m.TableID, err = readTaggedU32(r)
		case "table_name":
			m.TableName, err = readTaggedString(r)
		case "table_rows":
			m.TableRows, err = decodeTableUpdate(r)
		default:
			err = r.SkipValue()
		}
		if err != nil {
			return SubscribeApplied{}, err
		}
	}
	return m, nil
}

func encodeSubscriptionError(w *bsatn.Writer, m SubscriptionError) error {
	w.WriteStructHeader(5)
	if err := w.WriteFieldName("total_host_execution_duration_micros"); err != nil {
		return err
	}
	w.WriteU64(m.TotalHostExecutionDurationMicros)
	if err := w.WriteFieldName("request_id"); err != nil {
		return err
	}
	writeOptionalU32(w, m.RequestID)
	if err := w.WriteFieldName("query_id"); err != nil {
		return err
	}
	writeOptionalU32(w, m.QueryID)
	if err := w.WriteFieldName("table_id"); err != nil {
		return err
	}
	writeOptionalU32(w, m.TableID)
	if err := w.WriteFieldName("error"); err != nil {
		return err
	}
	return w.WriteString(m.Error)
}

func decodeSubscriptionError(r *bsatn.Reader) (SubscriptionError, error) {
	n, err := readStructHeader(r)
	if err != nil {
		return SubscriptionError{}, err
	}
	var m SubscriptionError
	for i := 0; i < n; i++ {
		name, err := r.ReadFieldName()
		if err != nil {
			return SubscriptionError{}, err
		}
		switch name {
		case "total_host_execution_duration_micros":
			m.TotalHostExecutionDurationMicros, err = readTaggedU64(r)
		case "request_id":
			m.RequestID, err = readOptionalU32(r)
		case "query_id":
			m.QueryID, err = readOptionalU32(r)
		case "table_id":
			m.TableID, err = readOptionalU32(r)
		case "error":
			m.Error, err = readTaggedString(r)
		default:
			err = r.SkipValue()
		}
		if err != nil {
			return SubscriptionError{}, err
		}
	}
	return m, nil
}

func encodeMultiApplied(w *bsatn.Writer, requestID uint32, durationMicros uint64, queryID QueryID, update DatabaseUpdate) error {
	w.WriteStructHeader(4)
	if err := w.WriteFieldName("request_id"); err != nil {
		return err
	}
	w.WriteU32(requestID)
	if err := w.WriteFieldName("total_host_execution_duration_micros"); err != nil {
		return err
	}
	w.WriteU64(durationMicros)
	if err := w.WriteFieldName("query_id"); err != nil {
		return err
	}
	if err := writeQueryID(w, queryID); err != nil {
		return err
	}
	if err := w.WriteFieldName("update"); err != nil {
		return err
	}
	return encodeDatabaseUpdate(w, update)
}

func decodeMultiApplied(r *bsatn.Reader) (uint32, uint64, QueryID, DatabaseUpdate, error) {
	n, err := readStructHeader(r)
	if err != nil {
		return 0, 0, QueryID{}, DatabaseUpdate{}, err
	}
	var (
		requestID      uint32
		durationMicros uint64
		queryID        QueryID
		update         DatabaseUpdate
	)
	for i := 0; i < n; i++ {
		name, err := r.ReadFieldName()
		if err != nil {
			return 0, 0, QueryID{}, DatabaseUpdate{}, err
		}
		switch name {
		case "request_id":
			requestID, err = readTaggedU32(r)
		case "total_host_execution_duration_micros":
			durationMicros, err = readTaggedU64(r)
		case "query_id":
			queryID, err = readQueryID(r)
		case "update":
			update, err = decodeDatabaseUpdate(r)
		default:
			err = r.SkipValue()
		}
		if err != nil {
			return 0, 0, QueryID{}, DatabaseUpdate{}, err
		}
	}
	return requestID, durationMicros, queryID, update, nil
}

func encodeOneOffTable(w *bsatn.Writer, t OneOffTable) error {
	w.WriteStructHeader(2)
	if err := w.WriteFieldName("table_name"); err != nil {
		return err
	}
	if err := w.WriteString(t.TableName); err != nil {
		return err
	}
	if err := w.WriteFieldName("rows"); err != nil {
		return err
	}
	return writeRows(w, t.Rows)
}

func decodeOneOffTable(r *bsatn.Reader) (OneOffTable, error) {
	n, err := readStructHeader(r)
	if err != nil {
		return OneOffTable{}, err
	}
	var t OneOffTable
	for i := 0; i < n; i++ {
		name, err := r.ReadFieldName()
		if err != nil {
			return OneOffTable{}, err
		}
		switch name {
		case "table_name":
			t.TableName, err = readTaggedString(r)
		case "rows":
			t.Rows, err = readRows(r)
		default:
			err = r.SkipValue()
		}
		if err != nil {
			return OneOffTable{}, err
		}
	}
	return t, nil
}

func encodeOneOffQueryResponse(w *bsatn.Writer, m OneOffQueryResponse) error {
	w.WriteStructHeader(4)
	if err := w.WriteFieldName("message_id"); err != nil {
		return err
	}
	if err := w.WriteBytes(m.MessageID); err != nil {
		return err
	}
	if err := w.WriteFieldName("error"); err != nil {
		return err
	}
	if err := writeOptionalString(w, m.Error); err != nil {
		return err
	}
	if err := w.WriteFieldName("tables"); err != nil {
		return err
	}
	w.WriteArrayHeader(len(m.Tables))
	for _, t := range m.Tables {
		if err := encodeOneOffTable(w, t); err != nil {
			return err
		}
	}
	if err := w.WriteFieldName("total_host_execution_duration"); err != nil {
		return err
	}
	w.WriteU64(m.TotalHostExecutionDuration.Nanos)
	return nil
}

func decodeOneOffQueryResponse(r *bsatn.Reader) (OneOffQueryResponse, error) {
	n, err := readStructHeader(r)
	if err != nil {
		return OneOffQueryResponse{}, err
	}
	var m OneOffQueryResponse
	for i := 0; i < n; i++ {
		name, err := r.ReadFieldName()
		if err != nil {
			return OneOffQueryResponse{}, err
		}
		switch name {
		case "message_id":
			m.MessageID, err = readTaggedBytes(r)
		case "error":
			m.Error, err = readOptionalString(r)
		case "tables":
			count, err := readArrayHeader(r)
			if err != nil {
				return OneOffQueryResponse{}, err
			}
			m.Tables = make([]OneOffTable, 0, count)
			for j := 0; j < count; j++ {
				t, err := decodeOneOffTable(r)
				if err != nil {
					return OneOffQueryResponse{}, err
				}
				m.Tables = append(m.Tables, t)
			}
		case "total_host_execution_duration":
			m.TotalHostExecutionDuration.Nanos, err = readTaggedU64(r)
		default:
			err = r.SkipValue()
		}
		if err != nil {
			return OneOffQueryResponse{}, err
		}
	}
	return m, nil
}

// DecodeServerMessage decodes a binary server message. Unknown payload
// fields are skipped; an unknown variant index fails with
// ErrUnknownVariant so the caller can decide whether to drop or disconnect.
func DecodeServerMessage(data []byte) (ServerMessage, error) {
	r := bsatn.NewReader(data)
	return DecodeServerMessageFrom(r)
}

// DecodeServerMessageFrom reads one server message from r.
func DecodeServerMessageFrom(r *bsatn.Reader) (ServerMessage, error) {
	tag, err := r.ReadTag()
	if err != nil {
		return nil, err
	}
	if tag != bsatn.TagEnum {
		return nil, fmt.Errorf("%w: expected enum envelope, got %s", bsatn.ErrInvalidTag, tag)
	}
	variant, err := r.ReadEnumHeader()
	if err != nil {
		return nil, err
	}
	switch variant {
	case VariantIdentityToken:
		return decodeIdentityToken(r)
	case VariantInitialSubscription:
		return decodeInitialSubscription(r)
	case VariantTransactionUpdate:
		return decodeTransactionUpdate(r)
	case VariantTransactionUpdateLight:
		return decodeTransactionUpdateLight(r)
	case VariantSubscribeApplied:
		return decodeSubscribeApplied(r)
	case VariantUnsubscribeApplied:
		m, err := decodeSubscribeApplied(r)
		if err != nil {
			return nil, err
		}
		return UnsubscribeApplied(m), nil
	case VariantSubscriptionError:
		return decodeSubscriptionError(r)
	case VariantSubscribeMultiApplied:
		reqID, micros, queryID, update, err := decodeMultiApplied(r)
		if err != nil {
			return nil, err
		}
		return SubscribeMultiApplied{RequestID: reqID, TotalHostExecutionDurationMicros: micros, QueryID: queryID, Update: update}, nil
	case VariantUnsubscribeMultiApplied:
		reqID, micros, queryID, update, err := decodeMultiApplied(r)
		if err != nil {
			return nil, err
		}
		return UnsubscribeMultiApplied{RequestID: reqID, TotalHostExecutionDurationMicros: micros, QueryID: queryID, Update: update}, nil
	case VariantOneOffQueryResponse:
		return decodeOneOffQueryResponse(r)
	default:
		return nil, fmt.Errorf("%w: server variant %d", ErrUnknownVariant, variant)
	}
}
