package enums

import "fmt"

// StockDirection marks whether a stock transaction added or removed units.
type StockDirection string

const (
	StockDirectionIn  StockDirection = "IN"
	StockDirectionOut StockDirection = "OUT"
)

func (d StockDirection) IsValid() bool {
	switch d {
	case StockDirectionIn, StockDirectionOut:
		return true
	}
	return false
}

func (d StockDirection) String() string {
	return string(d)
}

func ParseStockDirection(value string) (StockDirection, error) {
	direction := StockDirection(value)
	if !direction.IsValid() {
		return "", fmt.Errorf("invalid stock direction %q", value)
	}
	return direction, nil
}
