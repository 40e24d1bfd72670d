package gadsdomain

// CampaignRecord é uma campanha como reportada pela API
type CampaignRecord struct {
	ExternalID  string
	Name        string
	Status      string
	ChannelType string
}
