package protocols

import "time"

// ProtocolDetail is a support-interaction tracking record.
//
// Created externally; this service only reads it. Protocol is unique per
// active window, not globally.
type ProtocolDetail struct {
	Protocol    string    `json:"protocolo" db:"protocolo"`
	CreatedAt   time.Time `json:"data_criacao" db:"data_criacao"`
	PhoneNumber string    `json:"numero_telefone" db:"numero_telefone"`

	// Free-form fields; NULL in storage is null in JSON.
	Custom1 *string `json:"campo_custom_1" db:"campo_custom_1"`
	Custom2 *string `json:"campo_custom_2" db:"campo_custom_2"`
	Custom3 *string `json:"campo_custom_3" db:"campo_custom_3"`
	Custom4 *string `json:"campo_custom_4" db:"campo_custom_4"`
}

// DetailView is the response projection of a protocol looked up by number.
// Only these fields leave the service; the raw row is not returned here.
type DetailView struct {
	Protocol    string  `json:"protocolo"`
	CreatedAt   string  `json:"data_criacao"`
	OnTime      bool    `json:"esta_no_prazo"`
	PhoneNumber string  `json:"numero_telefone"`
	Custom1     *string `json:"campo_custom_1"`
	Custom2     *string `json:"campo_custom_2"`
	Custom3     *string `json:"campo_custom_3"`
	Custom4     *string `json:"campo_custom_4"`
}
