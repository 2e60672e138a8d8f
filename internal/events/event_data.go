package events

import (
	"encoding/json"
)

// EventData is the interface that all event data types must implement
// This allows for type-safe event data while maintaining flexibility
type EventData interface {
	// EventType returns the event type this data is associated with
	EventType() EventType
}

// TradesImportedData contains data for TradesImported events
type TradesImportedData struct {
	BatchID     string `json:"batch_id"`
	Filename    string `json:"filename,omitempty"`
	TotalRows   int    `json:"total_rows"`
	Imported    int    `json:"imported"`
	Skipped     int    `json:"skipped"`
	Tradovate   int    `json:"tradovate_rows"`
	TradingView int    `json:"tradingview_rows"`
}

// EventType returns the event type for TradesImportedData
func (d *TradesImportedData) EventType() EventType {
	return TradesImported
}

// ImportRevertedData contains data for ImportReverted events
type ImportRevertedData struct {
	BatchID string `json:"batch_id"`
	Deleted int    `json:"deleted"`
}

// EventType returns the event type for ImportRevertedData
func (d *ImportRevertedData) EventType() EventType {
	return ImportReverted
}

// TradeChangedData contains data for TradeCreated, TradeUpdated and TradeDeleted events
type TradeChangedData struct {
	Type   EventType `json:"-"`
	ID     int64     `json:"id"`
	Symbol string    `json:"symbol,omitempty"`
}

// EventType returns the event type carried by the change
func (d *TradeChangedData) EventType() EventType {
	if d.Type == "" {
		return TradeUpdated
	}
	return d.Type
}

// BackupCompletedData contains data for BackupCompleted events
type BackupCompletedData struct {
	Filename  string  `json:"filename"`
	SizeBytes int64   `json:"size_bytes"`
	DurationS float64 `json:"duration_seconds"`
	Deleted   int     `json:"rotated_out,omitempty"`
}

// EventType returns the event type for BackupCompletedData
func (d *BackupCompletedData) EventType() EventType {
	return BackupCompleted
}

// ErrorEventData contains data for ErrorOccurred events
type ErrorEventData struct {
	Error   string                 `json:"error"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// EventType returns the event type for ErrorEventData
func (d *ErrorEventData) EventType() EventType {
	return ErrorOccurred
}

// GetTypedData converts the event's Data map back into its typed EventData.
// Returns nil for unknown types or when the map does not fit the struct.
func (e *Event) GetTypedData() EventData {
	if e.Data == nil {
		return nil
	}

	var data EventData
	switch e.Type {
	case TradesImported:
		data = &TradesImportedData{}
	case ImportReverted:
		data = &ImportRevertedData{}
	case TradeCreated, TradeUpdated, TradeDeleted:
		data = &TradeChangedData{Type: e.Type}
	case BackupCompleted:
		data = &BackupCompletedData{}
	case ErrorOccurred:
		data = &ErrorEventData{}
	default:
		return nil
	}

	if err := convertMapToStruct(e.Data, data); err != nil {
		return nil
	}
	return data
}

// convertMapToStruct converts a map[string]interface{} to a struct
func convertMapToStruct(m map[string]interface{}, v interface{}) error {
	jsonBytes, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return json.Unmarshal(jsonBytes, v)
}

// convertEventDataToMap converts typed EventData to the map carried on the bus
func convertEventDataToMap(data EventData) map[string]interface{} {
	if data == nil {
		return nil
	}

	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return nil
	}

	var result map[string]interface{}
	if err := json.Unmarshal(jsonBytes, &result); err != nil {
		return nil
	}

	return result
}
