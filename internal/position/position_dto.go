package position

type PositionResponse struct {
	Code  string `json:"code"`
	Name  string `json:"name"`
	Level int    `json:"level"`
}
