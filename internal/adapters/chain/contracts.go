package chain

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Simplified ABIs for the three contracts the agent touches. In production
// you'd use abigen to generate full bindings; these cover exactly the
// methods we call.

// ERC-20 methods used for balance reads, allowance checks, transfers and
// approvals.
const (
	MethodBalanceOf = "balanceOf"
	MethodDecimals  = "decimals"
	MethodAllowance = "allowance"
	MethodApprove   = "approve"
	MethodTransfer  = "transfer"
)

// Agent-contract passthrough: execute(target, data) runs an arbitrary call
// under the contract's identity. Only the owning wallet may invoke it.
const MethodExecute = "execute"

// Router method for a single-pool exact-input swap.
const MethodExactInputSingle = "exactInputSingle"

// ParseERC20ABI returns the ERC-20 subset the agent needs.
func ParseERC20ABI() (abi.ABI, error) {
	const abiJSON = `[
		{
			"name": "balanceOf",
			"type": "function",
			"inputs": [{"name": "account", "type": "address"}],
			"outputs": [{"name": "", "type": "uint256"}],
			"stateMutability": "view"
		},
		{
			"name": "decimals",
			"type": "function",
			"inputs": [],
			"outputs": [{"name": "", "type": "uint8"}],
			"stateMutability": "view"
		},
		{
			"name": "allowance",
			"type": "function",
			"inputs": [
				{"name": "owner", "type": "address"},
				{"name": "spender", "type": "address"}
			],
			"outputs": [{"name": "", "type": "uint256"}],
			"stateMutability": "view"
		},
		{
			"name": "approve",
			"type": "function",
			"inputs": [
				{"name": "spender", "type": "address"},
				{"name": "amount", "type": "uint256"}
			],
			"outputs": [{"name": "", "type": "bool"}],
			"stateMutability": "nonpayable"
		},
		{
			"name": "transfer",
			"type": "function",
			"inputs": [
				{"name": "to", "type": "address"},
				{"name": "amount", "type": "uint256"}
			],
			"outputs": [{"name": "", "type": "bool"}],
			"stateMutability": "nonpayable"
		}
	]`

	return abi.JSON(strings.NewReader(abiJSON))
}

// ParseAgentABI returns the agent contract's passthrough method.
// execute(address target, bytes data) payable returns (bytes)
func ParseAgentABI() (abi.ABI, error) {
	const abiJSON = `[
		{
			"name": "execute",
			"type": "function",
			"inputs": [
				{"name": "target", "type": "address"},
				{"name": "data", "type": "bytes"}
			],
			"outputs": [{"name": "result", "type": "bytes"}],
			"stateMutability": "payable"
		}
	]`

	return abi.JSON(strings.NewReader(abiJSON))
}

// ParseRouterABI returns the swap router's exact-input method.
// exactInputSingle((address,address,uint24,address,uint256,uint256,uint160))
func ParseRouterABI() (abi.ABI, error) {
	const abiJSON = `[
		{
			"name": "exactInputSingle",
			"type": "function",
			"inputs": [
				{
					"name": "params",
					"type": "tuple",
					"components": [
						{"name": "tokenIn", "type": "address"},
						{"name": "tokenOut", "type": "address"},
						{"name": "fee", "type": "uint24"},
						{"name": "recipient", "type": "address"},
						{"name": "amountIn", "type": "uint256"},
						{"name": "amountOutMinimum", "type": "uint256"},
						{"name": "sqrtPriceLimitX96", "type": "uint160"}
					]
				}
			],
			"outputs": [{"name": "amountOut", "type": "uint256"}],
			"stateMutability": "payable"
		}
	]`

	return abi.JSON(strings.NewReader(abiJSON))
}

// MaxAllowance returns the unlimited ERC-20 allowance (2^256 - 1).
func MaxAllowance() *big.Int {
	max := new(big.Int).Lsh(big.NewInt(1), 256)
	return max.Sub(max, big.NewInt(1))
}
