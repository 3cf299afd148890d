package validate_test

import (
	"testing"

	"github.com/powledger/powledger/business/sys/validate"
)

const key = "04" +
	"79be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798" +
	"483ada7726a3c4655da4fbfc0e1108a8fd17b448a68554199c47d08ffb10d4b8"

type model struct {
	To     string `json:"to" validate:"required,address"`
	Amount uint64 `json:"amount" validate:"required"`
}

func Test_Check(t *testing.T) {
	type table struct {
		name   string
		val    model
		fields []string
	}

	tt := []table{
		{name: "valid", val: model{To: key, Amount: 10}},
		{name: "badaddress", val: model{To: "bob", Amount: 10}, fields: []string{"to"}},
		{name: "empty", val: model{}, fields: []string{"to", "amount"}},
	}

	for _, tst := range tt {
		f := func(t *testing.T) {
			err := validate.Check(tst.val)

			if len(tst.fields) == 0 {
				if err != nil {
					t.Fatalf("Test %s:\tShould pass validation: %s", tst.name, err)
				}
				return
			}

			if !validate.IsFieldErrors(err) {
				t.Fatalf("Test %s:\tShould get field errors: %v", tst.name, err)
			}

			fields := validate.GetFieldErrors(err).Fields()
			for _, name := range tst.fields {
				if _, exists := fields[name]; !exists {
					t.Logf("Test %s:\tgot: %v", tst.name, fields)
					t.Fatalf("Test %s:\tShould report the %s field.", tst.name, name)
				}
			}
		}

		t.Run(tst.name, f)
	}
}
