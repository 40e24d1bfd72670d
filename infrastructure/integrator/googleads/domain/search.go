package gadsdomain

// SearchRequest é o corpo do POST para googleAds:search
type SearchRequest struct {
	Query     string `json:"query"`
	PageToken string `json:"pageToken,omitempty"`
}

// SearchResponse é uma página de resultados de googleAds:search
type SearchResponse struct {
	Results       []SearchRow `json:"results"`
	NextPageToken string      `json:"nextPageToken,omitempty"`
	FieldMask     string      `json:"fieldMask,omitempty"`
}

// SearchRow agrega os recursos selecionados pela consulta GAQL. Apenas os
// nós pedidos no SELECT vêm preenchidos.
type SearchRow struct {
	Campaign       *CampaignNode       `json:"campaign,omitempty"`
	Metrics        *MetricsNode        `json:"metrics,omitempty"`
	Segments       *SegmentsNode       `json:"segments,omitempty"`
	CustomerClient *CustomerClientNode `json:"customerClient,omitempty"`
}

type CampaignNode struct {
	ResourceName           string `json:"resourceName,omitempty"`
	ID                     string `json:"id"`
	Name                   string `json:"name"`
	Status                 string `json:"status,omitempty"`
	AdvertisingChannelType string `json:"advertisingChannelType,omitempty"`
}

// MetricsNode traz as métricas da linha. A API REST serializa campos int64
// do protobuf como strings JSON, por isso os contadores chegam como string.
type MetricsNode struct {
	Impressions      string  `json:"impressions"`
	Clicks           string  `json:"clicks"`
	CostMicros       string  `json:"costMicros"`
	Conversions      float64 `json:"conversions"`
	ConversionsValue float64 `json:"conversionsValue"`
}

type SegmentsNode struct {
	Date          string `json:"date"`
	Device        string `json:"device,omitempty"`
	AdNetworkType string `json:"adNetworkType,omitempty"`
}

type CustomerClientNode struct {
	ResourceName    string `json:"resourceName,omitempty"`
	ClientCustomer  string `json:"clientCustomer,omitempty"`
	ID              string `json:"id"`
	DescriptiveName string `json:"descriptiveName,omitempty"`
	Manager         bool   `json:"manager,omitempty"`
}
