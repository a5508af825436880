package basic

// basic 基础DTO

type Response struct {
	Code int64  `json:"code"`
	Msg  string `json:"msg"`
}

// Page 游标或页码分页
type Page struct {
	Page   *int64  `json:"page,omitempty"`
	Size   *int64  `json:"size,omitempty"`
	Cursor *string `json:"cursor,omitempty"`
}

func (p *Page) GetPage() int64 {
	if p == nil || p.Page == nil {
		return 1
	}
	return *p.Page
}

func (p *Page) GetSize() int64 {
	if p == nil || p.Size == nil {
		return 10
	}
	return *p.Size
}
