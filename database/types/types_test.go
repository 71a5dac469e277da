// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package types_test

import (
	"database/sql"
	"database/sql/driver"
	"math/big"
	"reflect"
	"testing"

	"github.com/blinklabs-io/numbat/database/types"
)

func TestBigIntScanValue(t *testing.T) {
	large, _ := new(big.Int).SetString(
		"115792089237316195423570985008687907853269984665640564039457584007913129639935",
		10,
	)
	testDefs := []struct {
		origValue     any
		expectedValue any
	}{
		{
			origValue:     &types.BigInt{Int: big.NewInt(123)},
			expectedValue: "123",
		},
		{
			origValue:     &types.BigInt{Int: large},
			expectedValue: large.String(),
		},
		{
			origValue:     &types.BigInt{},
			expectedValue: "0",
		},
	}
	var ok bool
	var tmpScanner sql.Scanner
	var tmpValuer driver.Valuer
	for _, testDef := range testDefs {
		tmpValuer, ok = testDef.origValue.(driver.Valuer)
		if !ok {
			t.Fatalf("test original value does not implement driver.Valuer")
		}
		valueOut, err := tmpValuer.Value()
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		if !reflect.DeepEqual(valueOut, testDef.expectedValue) {
			t.Fatalf(
				"did not get expected value from Value(): got %#v, expected %#v",
				valueOut,
				testDef.expectedValue,
			)
		}
		scanned := &types.BigInt{}
		tmpScanner = scanned
		if err := tmpScanner.Scan(valueOut); err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		if scanned.String() != testDef.expectedValue {
			t.Fatalf(
				"did not get expected value after Scan(): got %s, expected %s",
				scanned.String(),
				testDef.expectedValue,
			)
		}
	}
}

func TestBigIntScanTypes(t *testing.T) {
	var b types.BigInt
	if err := b.Scan([]byte("42")); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if b.Int64() != 42 {
		t.Fatalf("unexpected value: %s", b.String())
	}
	if err := b.Scan(int64(7)); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if b.Int64() != 7 {
		t.Fatalf("unexpected value: %s", b.String())
	}
	if err := b.Scan(nil); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if b.Sign() != 0 {
		t.Fatalf("unexpected value: %s", b.String())
	}
	if err := b.Scan("not-a-number"); err == nil {
		t.Fatalf("expected error scanning invalid string")
	}
	if err := b.Scan(3.5); err == nil {
		t.Fatalf("expected error scanning float")
	}
}

func TestBigIntCopies(t *testing.T) {
	orig := big.NewInt(10)
	b := types.NewBigInt(orig)
	orig.SetInt64(20)
	if b.Int64() != 10 {
		t.Fatalf("NewBigInt did not copy its input")
	}
	out := b.Big()
	out.SetInt64(30)
	if b.Int64() != 10 {
		t.Fatalf("Big did not return a copy")
	}
	if types.NewBigInt(nil).Sign() != 0 {
		t.Fatalf("nil input should be zero")
	}
}

func TestKeys(t *testing.T) {
	id := []byte{0x01, 0x02}
	if got := types.ProposalBodyKey(id); string(got) != "pb\x01\x02" {
		t.Fatalf("unexpected proposal body key: %x", got)
	}
	if got := types.ExecutionReceiptKey(id); string(got) != "rc\x01\x02" {
		t.Fatalf("unexpected receipt key: %x", got)
	}
}
