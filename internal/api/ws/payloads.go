package ws

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// flexID accepts a transaction id sent either as a JSON number or a numeric string.
type flexID int64

func (f *flexID) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(data)), `"`)
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id %s", data)
	}
	*f = flexID(id)
	return nil
}

// flexString accepts a JSON string or number, e.g. a serial typed into a numeric field.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	*f = flexString(n.String())
	return nil
}

type gateEntryPayload struct {
	VehicleNumber   string `json:"vehicleNumber"`
	PartyName       string `json:"partyName"`
	Item            string `json:"item"`
	TransactionType string `json:"transactionType"`
}

type idPayload struct {
	ID *flexID `json:"id"`
}

type firstCapturePayload struct {
	ID        *flexID `json:"id"`
	GrossWt   float64 `json:"grossWt"`
	TareWt    float64 `json:"tareWt"`
	ImageData string  `json:"imageData"`
}

type secondCapturePayload struct {
	ID              *flexID `json:"id"`
	GrossWt         float64 `json:"grossWt"`
	TareWt          float64 `json:"tareWt"`
	ImageData       string  `json:"imageData"`
	TransporterName *string `json:"transporterName"`
	LRBiltyNo       *string `json:"lrBiltyNo"`
}

type printDetailsPayload struct {
	ID              *flexID `json:"id"`
	TransporterName *string `json:"transporterName"`
	LRBiltyNo       *string `json:"lrBiltyNo"`
}

type adminActionPayload struct {
	Password string `json:"password"`
	Action   string `json:"action"`
}

type datePayload struct {
	Date string `json:"date"`
}

type searchPayload struct {
	Serial flexString `json:"serial"`
}
