package devenv

type OmnivoxTestConfig struct {
	BaseUrl    string `json:"base_url"`
	LeaBaseUrl string `json:"lea_base_url"`
	StudentId  string `json:"student_id"`
	Password   string `json:"password"`
}
