package protocol

import "testing"

func BenchmarkEncodeTransactionUpdate(b *testing.B) {
	msg := TransactionUpdate{
		Status:    StatusCommitted(sampleDatabaseUpdate()),
		Timestamp: Timestamp{NanosSinceEpoch: 1700000000000000000},
		ReducerCall: ReducerCallInfo{
			ReducerName: "send_message",
			Args:        []byte{0x12, 0x00, 0x00, 0x00, 0x00},
			RequestID:   1,
		},
	}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := EncodeServerMessage(msg); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDecodeTransactionUpdate(b *testing.B) {
	data, err := EncodeServerMessage(TransactionUpdate{
		Status: StatusCommitted(sampleDatabaseUpdate()),
	})
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := DecodeServerMessage(data); err != nil {
			b.Fatal(err)
		}
	}
}
