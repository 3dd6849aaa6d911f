package hcl

import "github.com/hashicorp/hcl/v2"

// fileRoot decodes the top-level blocks of a specification document. Any
// top-level attribute is rejected by the decoder.
type fileRoot struct {
	Releases []*releaseBlock `hcl:"release,block"`
}

type releaseBlock struct {
	Product         string          `hcl:"product,optional"`
	Status          string          `hcl:"status,optional"`
	Country         string          `hcl:"country,optional"`
	Namespace       string          `hcl:"namespace,optional"`
	Date            string          `hcl:"date,optional"`
	Time            string          `hcl:"time,optional"`
	ContentSubTypes []string        `hcl:"content_sub_types,optional"`
	Content         []*contentBlock `hcl:"content,block"`
}

type contentBlock struct {
	Name  string       `hcl:"name,label"`
	Files []*fileBlock `hcl:"file,block"`
}

type fileBlock struct {
	ContentType    string         `hcl:"content_type,label"`
	FileType       string         `hcl:"file_type,optional"`
	Summary        string         `hcl:"summary,optional"`
	LanguageCode   string         `hcl:"language_code,optional"`
	Header         []string       `hcl:"header,optional"`
	Dependencies   []string       `hcl:"dependencies,optional"`
	DataFile       *bool          `hcl:"data_file,optional"`
	ContentSubType string         `hcl:"content_sub_type,optional"`
	Extension      string         `hcl:"extension,optional"`
	Include        []*filterBlock `hcl:"include,block"`
	Exclude        []*filterBlock `hcl:"exclude,block"`
}

// filterBlock holds free-form field = value attributes.
type filterBlock struct {
	Body hcl.Body `hcl:",remain"`
}
