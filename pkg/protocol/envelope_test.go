package protocol

import "testing"

func TestDecodeExtractsType(t *testing.T) {
	env, err := Decode([]byte(`{"type":"PLAYER_LIST","players":[{"username":"alice","rating":1500}]}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if env.Type != TypePlayerList {
		t.Fatalf("type = %q", env.Type)
	}

	var msg PlayerList
	if err := env.As(&msg); err != nil {
		t.Fatalf("As: %v", err)
	}
	if len(msg.Players) != 1 || msg.Players[0].Username != "alice" {
		t.Fatalf("payload = %+v", msg)
	}
}

func TestDecodeRejectsMissingType(t *testing.T) {
	if _, err := Decode([]byte(`{"players":[]}`)); err == nil {
		t.Fatal("frame without type should fail")
	}
	if _, err := Decode([]byte(`{"type":""}`)); err == nil {
		t.Fatal("frame with empty type should fail")
	}
	if _, err := Decode([]byte(`not json`)); err == nil {
		t.Fatal("non-JSON frame should fail")
	}
}

func TestAsIgnoresUnknownFields(t *testing.T) {
	env, err := Decode([]byte(`{"type":"MOVE_ACCEPTED","board_state":"8/8/8/8/8/8/8/8","current_turn":"black","is_check":false,"extra":"field"}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	var msg MoveAccepted
	if err := env.As(&msg); err != nil {
		t.Fatalf("As: %v", err)
	}
	if msg.CurrentTurn != "black" {
		t.Fatalf("payload = %+v", msg)
	}
}
