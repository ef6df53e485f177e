package paramutils

type MockFlagSet struct {
	Values map[string]interface{}
}

func (fs *MockFlagSet) GetStringOrDefault(flag, d string) string {
	if val, ok := fs.Values[flag]; ok {
		return val.(string)
	}

	return d
}

func (fs *MockFlagSet) GetBoolOrDefault(flag string, d bool) bool {
	if val, ok := fs.Values[flag]; ok {
		return val.(bool)
	}

	return d
}

func (fs *MockFlagSet) Changed(flag string) bool {
	_, ok := fs.Values[flag]
	return ok
}
