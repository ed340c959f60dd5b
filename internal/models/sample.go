package models

type Sample struct {
	Name        string `json:"Name"`
	Command     string `json:"Command"`
	URL         string `json:"Url"`
	Description string `json:"Description"`
}

// Catalog keeps the order the registry returned.
type Catalog []Sample

type ExtractResult struct {
	Destination    string `json:"destination"`
	FileCount      int    `json:"file_count"`
	DirCount       int    `json:"dir_count"`
	TotalSizeBytes int64  `json:"total_size_bytes"`
	TotalSizeHuman string `json:"total_size_human"`
}
