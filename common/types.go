package common

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Type is the logical type of a column or expression. The plan compiler never
// materializes values, so a Type only carries enough information to describe
// schemas and to pick the textual form of literals.
type Type int8

const (
	// For expressions whose type cannot be derived
	UnknownType Type = iota
	IntType
	BigIntType
	SmallIntType
	TinyIntType
	VarcharType
	CharType
	BooleanType
	DoubleType
	FloatType
	DecimalType
	DateType
	TimestampType
)

var typeNames = [...]string{
	UnknownType:   "unknown",
	IntType:       "int",
	BigIntType:    "bigint",
	SmallIntType:  "smallint",
	TinyIntType:   "tinyint",
	VarcharType:   "varchar",
	CharType:      "char",
	BooleanType:   "boolean",
	DoubleType:    "double",
	FloatType:     "float",
	DecimalType:   "decimal",
	DateType:      "date",
	TimestampType: "timestamp",
}

func (t Type) String() string {
	if int(t) < 0 || int(t) >= len(typeNames) {
		return "unknown"
	}
	return typeNames[t]
}

// IsNumeric reports whether arithmetic is defined on the type.
func (t Type) IsNumeric() bool {
	switch t {
	case IntType, BigIntType, SmallIntType, TinyIntType, DoubleType, FloatType, DecimalType:
		return true
	}
	return false
}

// ParseType maps a DDL type name to a Type. Matching is case-insensitive and
// accepts the common MySQL spellings of each type.
func ParseType(sqlType string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(sqlType)) {
	case "int", "integer", "mediumint":
		return IntType, nil
	case "bigint":
		return BigIntType, nil
	case "smallint":
		return SmallIntType, nil
	case "tinyint":
		return TinyIntType, nil
	case "varchar", "text", "string", "tinytext", "mediumtext", "longtext":
		return VarcharType, nil
	case "char":
		return CharType, nil
	case "bool", "boolean":
		return BooleanType, nil
	case "double", "real":
		return DoubleType, nil
	case "float":
		return FloatType, nil
	case "decimal", "numeric":
		return DecimalType, nil
	case "date":
		return DateType, nil
	case "timestamp", "datetime":
		return TimestampType, nil
	}
	return UnknownType, NewError(UnsupportedSyntaxError, "unsupported column type '%s'", sqlType)
}

// MarshalJSON stores types by name so that catalog files stay readable.
func (t Type) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *Type) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return fmt.Errorf("type must be a string: %w", err)
	}
	if name == UnknownType.String() {
		*t = UnknownType
		return nil
	}
	parsed, err := ParseType(name)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ObjectID is a unique identifier for a table in the catalog.
type ObjectID uint32

const InvalidObjectID ObjectID = 0
