package snowflake

import (
	"encoding/json"
	"testing"
)

func TestUnmarshal(t *testing.T) {
	cases := []struct {
		in      string
		want    ID
		wantErr bool
	}{
		{in: `1090234710123456789`, want: "1090234710123456789"},
		{in: `"1090234710123456789"`, want: "1090234710123456789"},
		{in: `""`, want: ""},
		{in: `0`, want: ""},
		{in: `null`, want: ""},
		{in: `"abc"`, wantErr: true},
		{in: `1.5`, wantErr: true},
		{in: `true`, wantErr: true},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			var got ID
			err := json.Unmarshal([]byte(c.in), &got)
			if (err != nil) != c.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, c.wantErr)
			}
			if !c.wantErr && got != c.want {
				t.Errorf("got %q, want %q", got, c.want)
			}
		})
	}
}

func TestMarshalKeepsDigits(t *testing.T) {
	b, err := json.Marshal(struct {
		Channel ID `json:"channel"`
	}{Channel: "1090234710123456789"})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"channel":1090234710123456789}` {
		t.Errorf("got %s", b)
	}
}
