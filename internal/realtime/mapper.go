package realtime

import (
	"time"

	"weighbridge-server/internal/domain"
	"weighbridge-server/internal/service"
)

// PendingDTO is the wire form of an in-flight transaction. Timestamps are epoch milliseconds.
type PendingDTO struct {
	ID                      int64   `json:"id"`
	VehicleNumber           string  `json:"vehicleNumber"`
	PartyName               string  `json:"partyName"`
	Item                    string  `json:"item"`
	TransactionType         string  `json:"transactionType"`
	Status                  string  `json:"status"`
	ExitAuthorized          bool    `json:"exitAuthorized"`
	GrossWt                 float64 `json:"grossWt"`
	TareWt                  float64 `json:"tareWt"`
	Image1                  *string `json:"image1"`
	CreatedTimestamp        int64   `json:"createdTimestamp"`
	AuthorizedTimestamp     *int64  `json:"authorizedTimestamp"`
	ExitAuthorizedTimestamp *int64  `json:"exitAuthorizedTimestamp,omitempty"`
}

// CompletedDTO is the wire form of a finalized record.
type CompletedDTO struct {
	ID                 int64   `json:"id"`
	VehicleNumber      string  `json:"vehicleNumber"`
	PartyName          string  `json:"partyName"`
	Item               string  `json:"item"`
	TransactionType    string  `json:"transactionType"`
	GrossWt            float64 `json:"grossWt"`
	TareWt             float64 `json:"tareWt"`
	NetWt              float64 `json:"netWt"`
	Image1             *string `json:"image1"`
	Image2             *string `json:"image2"`
	Date               string  `json:"date"`
	CreatedTimestamp   *int64  `json:"createdTimestamp"`
	CompletedTimestamp int64   `json:"completedTimestamp"`
	TransporterName    *string `json:"transporterName"`
	LRBiltyNo          *string `json:"lrBiltyNo"`
}

func MapPendingToDTO(tx *domain.Transaction) PendingDTO {
	return PendingDTO{
		ID:                      tx.ID,
		VehicleNumber:           tx.VehicleNumber,
		PartyName:               tx.PartyName,
		Item:                    tx.Item,
		TransactionType:         string(tx.Kind),
		Status:                  string(tx.Status),
		ExitAuthorized:          tx.ExitAuthorized,
		GrossWt:                 tx.GrossWt,
		TareWt:                  tx.TareWt,
		Image1:                  tx.Image1,
		CreatedTimestamp:        tx.CreatedAt.UnixMilli(),
		AuthorizedTimestamp:     millisPtr(tx.AuthorizedAt),
		ExitAuthorizedTimestamp: millisPtr(tx.ExitAuthorizedAt),
	}
}

func MapCompletedToDTO(rec *domain.CompletedRecord) CompletedDTO {
	dto := CompletedDTO{
		ID:                 rec.ID,
		VehicleNumber:      rec.VehicleNumber,
		PartyName:          rec.PartyName,
		Item:               rec.Item,
		TransactionType:    string(rec.Kind),
		GrossWt:            rec.GrossWt,
		TareWt:             rec.TareWt,
		NetWt:              rec.NetWt,
		Image1:             rec.Image1,
		Image2:             rec.Image2,
		Date:               rec.Date,
		CompletedTimestamp: rec.CompletedAt.UnixMilli(),
		TransporterName:    rec.TransporterName,
		LRBiltyNo:          rec.LRNumber,
	}
	if !rec.CreatedAt.IsZero() {
		dto.CreatedTimestamp = millisPtr(&rec.CreatedAt)
	}
	return dto
}

func millisPtr(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	ms := t.UnixMilli()
	return &ms
}

func WeightMessage(weight float64) Message {
	return Message{Type: TypeLiveWeight, Payload: weight}
}

func PendingListMessage(pending []domain.Transaction) Message {
	dtos := make([]PendingDTO, 0, len(pending))
	for i := range pending {
		dtos = append(dtos, MapPendingToDTO(&pending[i]))
	}
	return Message{Type: TypePendingList, Payload: dtos}
}

func CompletedListMessage(date string, records []domain.CompletedRecord) Message {
	dtos := make([]CompletedDTO, 0, len(records))
	for i := range records {
		dtos = append(dtos, MapCompletedToDTO(&records[i]))
	}
	return Message{Type: TypeCompletedList, Payload: completedListPayload{Date: date, Records: dtos}}
}

func GateAlertMessage(text string) Message {
	return Message{Type: TypeGateAlert, Message: text}
}

func PermitAlertMessage(id int64, exit bool) Message {
	p := permitPayload{ID: id}
	if exit {
		p.Type = "EXIT"
	}
	return Message{Type: TypePermitAlert, Payload: p}
}

func PortChangeMessage(result service.PortChange) Message {
	return Message{Type: TypePortChangeResult, Payload: result}
}

func AdminResultMessage(result service.AdminResult) Message {
	return Message{Type: TypeAdminActionResult, Payload: result}
}

// SearchResultMessage picks the reply type from which store matched.
func SearchResultMessage(res domain.SearchResult) Message {
	switch {
	case res.Pending != nil:
		return Message{Type: TypeSearchPending, Payload: MapPendingToDTO(res.Pending)}
	case res.Completed != nil:
		return Message{Type: TypeSearchCompleted, Payload: MapCompletedToDTO(res.Completed)}
	default:
		return Message{Type: TypeSearchNotFound}
	}
}

func CommandErrorMessage(command string, err error) Message {
	return Message{Type: TypeCommandError, Payload: commandErrorPayload{Command: command, Error: err.Error()}}
}
