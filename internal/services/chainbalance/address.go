package chainbalance

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// ErrInvalidAddress 可用 errors.Is 判断地址校验失败。
var ErrInvalidAddress = errors.New("invalid address")

// InvalidAddressError 指出第一个未通过校验的地址。
type InvalidAddressError struct {
	Index int
	Value string
	Err   error
}

func (e *InvalidAddressError) Error() string {
	return fmt.Sprintf("invalid address #%d %q: %v", e.Index, e.Value, e.Err)
}

func (e *InvalidAddressError) Unwrap() error { return e.Err }

func (e *InvalidAddressError) Is(target error) bool { return target == ErrInvalidAddress }

// ParseAddresses 把配置里的地址串逐个转换为 32 字节公钥，顺序与输入一一对应。
//
// 遇到第一个非法地址立即返回，不继续收集后续错误，也不返回部分结果。
func ParseAddresses(wallets []string) ([]solana.PublicKey, error) {
	out := make([]solana.PublicKey, 0, len(wallets))
	for i, w := range wallets {
		pk, err := solana.PublicKeyFromBase58(w)
		if err != nil {
			return nil, &InvalidAddressError{Index: i, Value: w, Err: err}
		}
		out = append(out, pk)
	}
	return out, nil
}
