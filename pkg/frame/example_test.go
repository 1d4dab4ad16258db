package frame_test

import (
	"bytes"
	"fmt"

	"github.com/ssargent/freyjawal/pkg/frame"
)

func ExampleAppend() {
	f := frame.Frame{LSN: 1, TxnID: 7, Op: frame.OpUpdate, Table: "t", Data: []byte("x")}

	buf := frame.Append(nil, f)
	fmt.Printf("Encoded %d bytes\n", len(buf))

	decoded, _, err := frame.Decode(buf)
	if err != nil {
		panic(err)
	}
	fmt.Printf("lsn=%d txn=%d op=%s table=%s data=%s\n",
		decoded.LSN, decoded.TxnID, decoded.Op, decoded.Table, decoded.Data)

	// Output:
	// Encoded 21 bytes
	// lsn=1 txn=7 op=update table=t data=x
}

func ExampleScanner() {
	var log []byte
	log = frame.Append(log, frame.Frame{LSN: 1, Op: frame.OpInsert, Table: "users", Data: []byte("a")})
	log = frame.Append(log, frame.Frame{LSN: 2, Op: frame.OpDelete, Table: "users"})

	s := frame.NewScanner(bytes.NewReader(log))
	for s.Next() {
		f := s.Frame()
		fmt.Printf("%d %s %s\n", f.LSN, f.Op, f.Table)
	}
	if err := s.Err(); err != nil {
		panic(err)
	}

	// Output:
	// 1 insert users
	// 2 delete users
}
