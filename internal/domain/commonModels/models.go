package commonModels

import "time"

// Chunk is one bounded slice of extracted document text. Index is the
// position inside the source document and drives reassembly order.
type Chunk struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

type Document struct {
	Id          string    `json:"source_doc_id"`
	Name        string    `json:"doc_name"`
	UploadedAt  time.Time `json:"uploaded_at"`
	ContentType DocType   `json:"contentType"`
	SizeBytes   int64     `json:"size_bytes"`
}

type DocType string

var PDF DocType = "PDF"
var DOCX DocType = "DOCX"
var ERR DocType = "ERROR"
