package dto

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// EndYear is the closing year of an experience. The zero value is Present:
// the position is still ongoing.
type EndYear struct {
	year  int
	ended bool
}

func Present() EndYear { return EndYear{} }

func EndedIn(year int) EndYear { return EndYear{year: year, ended: true} }

// EndYearFromPtr maps a nullable column value; nil means Present.
func EndYearFromPtr(p *int) EndYear {
	if p == nil {
		return Present()
	}
	return EndedIn(*p)
}

func (e EndYear) IsPresent() bool { return !e.ended }

// Year returns the concrete year and false when the position is ongoing.
func (e EndYear) Year() (int, bool) { return e.year, e.ended }

func (e EndYear) Ptr() *int {
	if !e.ended {
		return nil
	}
	y := e.year
	return &y
}

func (e EndYear) String() string {
	if !e.ended {
		return "Present"
	}
	return strconv.Itoa(e.year)
}

func (e EndYear) MarshalJSON() ([]byte, error) {
	if !e.ended {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(e.year)), nil
}

func (e *EndYear) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*e = Present()
		return nil
	}

	var y int
	if err := json.Unmarshal(data, &y); err != nil {
		return err
	}

	*e = EndedIn(y)
	return nil
}
