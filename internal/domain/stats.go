package domain

// LabelStat is the number of annotations carrying a label.
type LabelStat struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// SystemStats summarizes the annotation store.
type SystemStats struct {
	TotalTexts      int         `json:"total_texts"`
	LabeledTexts    int         `json:"labeled_texts"`
	UnlabeledTexts  int         `json:"unlabeled_texts"`
	TotalLabels     int         `json:"total_labels"`
	LabelStatistics []LabelStat `json:"label_statistics"`
}
