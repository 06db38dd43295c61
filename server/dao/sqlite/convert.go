package sqlite

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/dekarrin/rezi"
	"github.com/google/uuid"

	"github.com/dekarrin/cfgnorm/internal/grammar"
)

func convertToDB_UUID(u uuid.UUID) string {
	return u.String()
}

func convertToDB_Time(t time.Time) int64 {
	return t.Unix()
}

func convertToDB_Bool(b bool) int {
	if b {
		return 1
	}
	return 0
}

// convertToDB_Grammar gives the base64 text of g's binary snapshot.
func convertToDB_Grammar(g grammar.Grammar) string {
	return base64.StdEncoding.EncodeToString(rezi.EncBinary(g))
}

func convertFromDB_UUID(s string, target *uuid.UUID) error {
	u, err := uuid.Parse(s)
	if err != nil {
		return err
	}
	*target = u
	return nil
}

func convertFromDB_Time(i int64, target *time.Time) error {
	*target = time.Unix(i, 0)
	return nil
}

func convertFromDB_Bool(i int, target *bool) error {
	switch i {
	case 0:
		*target = false
	case 1:
		*target = true
	default:
		return fmt.Errorf("not 0 or 1: %d", i)
	}
	return nil
}

func convertFromDB_Grammar(s string, target *grammar.Grammar) error {
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return fmt.Errorf("base64: %w", err)
	}

	var g grammar.Grammar
	if _, err := rezi.DecBinary(data, &g); err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	*target = g
	return nil
}
